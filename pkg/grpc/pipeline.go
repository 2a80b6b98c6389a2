package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The Pipeline service exchanges google.protobuf.Struct messages, so it is registered by hand
// instead of through generated stubs.
const (
	PipelineServiceName = "sensorpipe.v1.Pipeline"

	PipelineIngestMethod          = "/sensorpipe.v1.Pipeline/Ingest"
	PipelinePreviewMethod         = "/sensorpipe.v1.Pipeline/Preview"
	PipelineListDeadLettersMethod = "/sensorpipe.v1.Pipeline/ListDeadLetters"
)

type PipelineServiceServer interface {
	Ingest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Preview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListDeadLetters(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterPipelineServiceServer(s grpc.ServiceRegistrar, srv PipelineServiceServer) {
	s.RegisterService(&PipelineServiceDesc, srv)
}

// methodHandler matches the unexported handler type of grpc.MethodDesc.
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

func unaryHandler(method string, call func(PipelineServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PipelineServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PipelineServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var PipelineServiceDesc = grpc.ServiceDesc{
	ServiceName: PipelineServiceName,
	HandlerType: (*PipelineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ingest",
			Handler:    unaryHandler(PipelineIngestMethod, PipelineServiceServer.Ingest),
		},
		{
			MethodName: "Preview",
			Handler:    unaryHandler(PipelinePreviewMethod, PipelineServiceServer.Preview),
		},
		{
			MethodName: "ListDeadLetters",
			Handler:    unaryHandler(PipelineListDeadLettersMethod, PipelineServiceServer.ListDeadLetters),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sensorpipe/v1/pipeline.proto",
}

type PipelineServiceClient interface {
	Ingest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Preview(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListDeadLetters(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type pipelineServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPipelineServiceClient(cc grpc.ClientConnInterface) PipelineServiceClient {
	return &pipelineServiceClient{cc}
}

func (c *pipelineServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pipelineServiceClient) Ingest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PipelineIngestMethod, in, opts...)
}

func (c *pipelineServiceClient) Preview(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PipelinePreviewMethod, in, opts...)
}

func (c *pipelineServiceClient) ListDeadLetters(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PipelineListDeadLettersMethod, in, opts...)
}
