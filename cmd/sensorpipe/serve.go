package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	pipelineGrpc "liyu1981.xyz/sensor-pipeline/pkg/grpc"
	pipelineHttp "liyu1981.xyz/sensor-pipeline/pkg/http"
	"liyu1981.xyz/sensor-pipeline/pkg/iot"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers and the alert scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, core, closeCore, err := openCore(ctx)
			if err != nil {
				return err
			}
			defer closeCore()

			logger := common.GetLogger()
			limiter := fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", cfg.DefaultRate, cfg.DefaultBurst)
			errCh := make(chan error, 2)

			var grpcServer *grpc.Server
			if cfg.GrpcHostPort != "" {
				pipelineServer := &pipelineGrpc.PipelineServer{
					Iot:              core,
					RateLimiterStore: iot.NewRateLimiterStore(rate.Limit(cfg.DefaultRate), cfg.DefaultBurst),
				}
				interceptor := pipelineServer.CreateRateLimitInterceptor([]string{
					pipelineGrpc.PipelineIngestMethod,
				})
				grpcServer = grpc.NewServer(grpc.UnaryInterceptor(interceptor))
				pipelineGrpc.RegisterPipelineServiceServer(grpcServer, pipelineServer)
				logger.Info("gRPC server created with:", zap.String("default_limiter", limiter))

				listener, err := net.Listen("tcp", cfg.GrpcHostPort)
				if err != nil {
					return fmt.Errorf("failed to listen on %s: %w", cfg.GrpcHostPort, err)
				}
				go func() {
					logger.Info("Starting gRPC server on: " + cfg.GrpcHostPort)
					errCh <- grpcServer.Serve(listener)
				}()
			}

			rs := &pipelineHttp.RestfulServer{
				Server:           gin.Default(),
				Iot:              core,
				RateLimiterStore: iot.NewRateLimiterStore(rate.Limit(cfg.DefaultRate), cfg.DefaultBurst),
			}
			rs.Setup()
			logger.Info("http server created with:", zap.String("default_limiter", limiter))

			httpServer := &http.Server{Addr: cfg.HttpHostPort, Handler: rs.Server}
			go func() {
				logger.Info("Starting HTTP server on: " + cfg.HttpHostPort)
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			if !noScheduler && cfg.SchedulerInterval > 0 {
				go iot.NewScheduler(core, cfg.SchedulerInterval).Run(ctx)
			}

			select {
			case <-ctx.Done():
				logger.Info("Shutting down")
			case err = <-errCh:
				logger.Error("Server stopped", zap.Error(err))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if grpcServer != nil {
				grpcServer.GracefulStop()
			}
			if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
				logger.Warn("HTTP shutdown", zap.Error(shutdownErr))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Do not run periodic health and alert evaluation")
	return cmd
}
