package matchserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "mobai.match.v1.MatchService"

// MatchServiceServer is the server API for the match service. Requests and
// responses are free-form structs so the order and view JSON formats pass
// through unchanged.
type MatchServiceServer interface {
	// CreateMatch({}) -> {match_id, turn}
	CreateMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// SubmitOrders({match_id, side, commands, idempotency_key?}) -> outcome
	SubmitOrders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetState({match_id, side}) -> player view
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ResumeMatch({match_id}) -> {match_id, turn}
	ResumeMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(MatchServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MatchServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(MatchServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MatchService_ServiceDesc is the grpc.ServiceDesc for the match service
var MatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateMatch", Handler: unaryHandler("CreateMatch", MatchServiceServer.CreateMatch)},
		{MethodName: "SubmitOrders", Handler: unaryHandler("SubmitOrders", MatchServiceServer.SubmitOrders)},
		{MethodName: "GetState", Handler: unaryHandler("GetState", MatchServiceServer.GetState)},
		{MethodName: "ResumeMatch", Handler: unaryHandler("ResumeMatch", MatchServiceServer.ResumeMatch)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mobai/match/v1/match.proto",
}

// RegisterMatchServiceServer registers srv on s
func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchService_ServiceDesc, srv)
}

// MatchServiceClient calls the match service over a client connection
type MatchServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMatchServiceClient wraps cc
func NewMatchServiceClient(cc grpc.ClientConnInterface) *MatchServiceClient {
	return &MatchServiceClient{cc: cc}
}

func (c *MatchServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatchServiceClient) CreateMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateMatch", in, opts...)
}

func (c *MatchServiceClient) SubmitOrders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SubmitOrders", in, opts...)
}

func (c *MatchServiceClient) GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetState", in, opts...)
}

func (c *MatchServiceClient) ResumeMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ResumeMatch", in, opts...)
}
