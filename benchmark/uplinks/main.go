package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	pipelineGrpc "liyu1981.xyz/sensor-pipeline/pkg/grpc"
)

var maxDevices = flag.Int("devices", 1000, "number of sensors to provision")
var uplinksPerDevice = flag.Int("uplinks", 5, "uplinks sent per sensor")
var httpHostPort = flag.String("http", "127.0.0.1:8080", "HTTP server address")
var grpcHostPort = flag.String("grpc", "127.0.0.1:8081", "gRPC server address")

var rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var httpClient *resty.Client
var grpcClient pipelineGrpc.PipelineServiceClient

type counters struct {
	stored      atomic.Int64
	duplicates  atomic.Int64
	deadLetters atomic.Int64
	limited     atomic.Int64
	failed      atomic.Int64
}

func main() {
	flag.Parse()

	httpClient = resty.New().
		SetBaseURL("http://"+*httpHostPort).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")

	resp, err := httpClient.R().Get("/healthz")
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Fatal("HTTP server not available")
	}
	fmt.Printf("http server verified\n")

	conn, err := grpc.NewClient(*grpcHostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = pipelineGrpc.NewPipelineServiceClient(conn)
	fmt.Printf("gRPC client ready\n")

	devEUIs := make([]string, *maxDevices)
	tenantID := uuid.NewString()
	startTime := time.Now()
	wg := sync.WaitGroup{}
	for i := range *maxDevices {
		devEUIs[i] = uuid.NewString()
		wg.Add(1)
		go func() {
			defer wg.Done()
			provision(tenantID, devEUIs[i])
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)
	fmt.Printf(
		"provisioned %v sensors: used time=%v seconds, throughput=%v action/second\n",
		*maxDevices, usedTime.Seconds(), float64(*maxDevices)/usedTime.Seconds(),
	)

	var c counters
	startTime = time.Now()
	wg = sync.WaitGroup{}
	for _, devEUI := range devEUIs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range *uplinksPerDevice {
				sendUplink(&c, devEUI, n)
			}
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	total := *maxDevices * *uplinksPerDevice
	fmt.Printf(
		"sent %v uplinks: used time=%v seconds, throughput=%v action/second\n",
		total, usedTime.Seconds(), float64(total)/usedTime.Seconds(),
	)
	fmt.Printf("stored=%d duplicates=%d deadLetters=%d limited=%d failed=%d\n",
		c.stored.Load(), c.duplicates.Load(), c.deadLetters.Load(), c.limited.Load(), c.failed.Load())
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func rndFloat64(min, max float64, decimal int) float64 {
	rndMu.Lock()
	val := min + rnd.Float64()*(max-min)
	rndMu.Unlock()
	multiplier := math.Pow10(decimal)
	return math.Round(val*multiplier) / multiplier
}

func provision(tenantID, devEUI string) {
	resp, err := httpClient.R().
		SetBody(map[string]any{"devEui": devEUI, "tenantId": tenantID, "type": "PARKING"}).
		Post("/sensors")
	if err != nil {
		panic(err)
	}
	if resp.StatusCode() != http.StatusCreated {
		panic(fmt.Sprintf("provision %s: %d %s", devEUI, resp.StatusCode(), resp.String()))
	}
}

// parkingPayload builds a hex frame with a random occupancy flag and battery level.
func parkingPayload() string {
	occupied := 0
	if flipCoin() {
		occupied = 1
	}
	return fmt.Sprintf("%02x%02x", occupied, int(rndFloat64(5, 100, 0)))
}

func sendUplink(c *counters, devEUI string, n int) {
	body := map[string]any{
		"devEui":     devEUI,
		"sensorType": "PARKING",
		"rawPayload": parkingPayload(),
		"time":       time.Now().UTC().Add(-time.Duration(n) * time.Minute).Format(time.RFC3339),
		"rssi":       rndFloat64(-120, -60, 1),
		"snr":        rndFloat64(-10, 12, 1),
	}

	if flipCoin() {
		var out struct {
			Stored bool `json:"stored"`
		}
		resp, err := httpClient.R().SetBody(body).SetResult(&out).Post("/uplinks")
		switch {
		case err != nil:
			c.failed.Add(1)
		case resp.StatusCode() == http.StatusTooManyRequests:
			c.limited.Add(1)
		case resp.StatusCode() == http.StatusUnprocessableEntity:
			c.deadLetters.Add(1)
		case resp.StatusCode() != http.StatusOK:
			c.failed.Add(1)
		case out.Stored:
			c.stored.Add(1)
		default:
			c.duplicates.Add(1)
		}
		return
	}

	req, err := structpb.NewStruct(body)
	if err != nil {
		panic(err)
	}
	resp, err := grpcClient.Ingest(context.Background(), req)
	if status.Code(err) == codes.ResourceExhausted {
		c.limited.Add(1)
		return
	}
	if err != nil {
		c.failed.Add(1)
		return
	}
	fields := resp.GetFields()
	switch {
	case !fields["status"].GetStructValue().GetFields()["success"].GetBoolValue():
		c.deadLetters.Add(1)
	case fields["stored"].GetBoolValue():
		c.stored.Add(1)
	default:
		c.duplicates.Add(1)
	}
}
