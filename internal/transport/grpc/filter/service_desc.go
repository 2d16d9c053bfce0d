package filter

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names exposed over gRPC.
const (
	ServiceName              = "storefrontfilters.v1.FilterService"
	FilterProductsFullMethod = "/" + ServiceName + "/FilterProducts"
)

// FilterServiceServer is the server API for FilterService.
// Requests carry filter parameters; replies carry the JSON envelope.
type FilterServiceServer interface {
	FilterProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes FilterService for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FilterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "FilterProducts",
			Handler:    filterProductsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefrontfilters/v1/filter.proto",
}

// RegisterFilterServiceServer registers srv on s.
func RegisterFilterServiceServer(s grpc.ServiceRegistrar, srv FilterServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func filterProductsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FilterServiceServer).FilterProducts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FilterProductsFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FilterServiceServer).FilterProducts(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// FilterServiceClient is the client API for FilterService.
type FilterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFilterServiceClient creates a client over an existing connection.
func NewFilterServiceClient(cc grpc.ClientConnInterface) *FilterServiceClient {
	return &FilterServiceClient{cc: cc}
}

// FilterProducts invokes the remote FilterProducts method.
func (c *FilterServiceClient) FilterProducts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FilterProductsFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
