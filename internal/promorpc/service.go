package promorpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "promo.PromoService"

const (
	methodCreate = "/" + ServiceName + "/CreatePromo"
	methodList   = "/" + ServiceName + "/ListPromos"
	methodGet    = "/" + ServiceName + "/GetPromo"
	methodUpdate = "/" + ServiceName + "/UpdatePromo"
	methodDelete = "/" + ServiceName + "/DeletePromo"
)

// PromoServiceServer is implemented by the promo backend.
type PromoServiceServer interface {
	CreatePromo(context.Context, *PromoRequest) (*PromoResponse, error)
	ListPromos(context.Context, *PromoListRequest) (*PromoListResponse, error)
	GetPromo(context.Context, *PromoRequest) (*PromoResponse, error)
	UpdatePromo(context.Context, *PromoUpdateRequest) (*PromoResponse, error)
	DeletePromo(context.Context, *PromoDeleteRequest) (*Empty, error)
}

// PromoServiceClient is the caller side of PromoServiceServer.
type PromoServiceClient interface {
	CreatePromo(ctx context.Context, in *PromoRequest, opts ...grpc.CallOption) (*PromoResponse, error)
	ListPromos(ctx context.Context, in *PromoListRequest, opts ...grpc.CallOption) (*PromoListResponse, error)
	GetPromo(ctx context.Context, in *PromoRequest, opts ...grpc.CallOption) (*PromoResponse, error)
	UpdatePromo(ctx context.Context, in *PromoUpdateRequest, opts ...grpc.CallOption) (*PromoResponse, error)
	DeletePromo(ctx context.Context, in *PromoDeleteRequest, opts ...grpc.CallOption) (*Empty, error)
}

type promoServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPromoServiceClient returns a client whose calls use the JSON codec.
func NewPromoServiceClient(cc grpc.ClientConnInterface) PromoServiceClient {
	return &promoServiceClient{cc: cc}
}

func (c *promoServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *promoServiceClient) CreatePromo(ctx context.Context, in *PromoRequest, opts ...grpc.CallOption) (*PromoResponse, error) {
	out := new(PromoResponse)
	if err := c.invoke(ctx, methodCreate, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *promoServiceClient) ListPromos(ctx context.Context, in *PromoListRequest, opts ...grpc.CallOption) (*PromoListResponse, error) {
	out := new(PromoListResponse)
	if err := c.invoke(ctx, methodList, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *promoServiceClient) GetPromo(ctx context.Context, in *PromoRequest, opts ...grpc.CallOption) (*PromoResponse, error) {
	out := new(PromoResponse)
	if err := c.invoke(ctx, methodGet, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *promoServiceClient) UpdatePromo(ctx context.Context, in *PromoUpdateRequest, opts ...grpc.CallOption) (*PromoResponse, error) {
	out := new(PromoResponse)
	if err := c.invoke(ctx, methodUpdate, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *promoServiceClient) DeletePromo(ctx context.Context, in *PromoDeleteRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, methodDelete, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterPromoServiceServer registers srv on s.
func RegisterPromoServiceServer(s grpc.ServiceRegistrar, srv PromoServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the promo service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PromoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreatePromo", Handler: createHandler},
		{MethodName: "ListPromos", Handler: listHandler},
		{MethodName: "GetPromo", Handler: getHandler},
		{MethodName: "UpdatePromo", Handler: updateHandler},
		{MethodName: "DeletePromo", Handler: deleteHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "promo.proto",
}

// unary decodes the request into in and runs call through the interceptor chain.
func unary[Req any, Resp any](
	ctx context.Context,
	srv any,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
	fullMethod string,
	call func(PromoServiceServer, context.Context, *Req) (*Resp, error),
) (any, error) {
	in := new(Req)
	if err := dec(in); err != nil {
		return nil, err
	}
	s := srv.(PromoServiceServer)
	if interceptor == nil {
		return call(s, ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return call(s, ctx, req.(*Req))
	}
	return interceptor(ctx, in, info, handler)
}

func createHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, srv, dec, interceptor, methodCreate, PromoServiceServer.CreatePromo)
}

func listHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, srv, dec, interceptor, methodList, PromoServiceServer.ListPromos)
}

func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, srv, dec, interceptor, methodGet, PromoServiceServer.GetPromo)
}

func updateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, srv, dec, interceptor, methodUpdate, PromoServiceServer.UpdatePromo)
}

func deleteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, srv, dec, interceptor, methodDelete, PromoServiceServer.DeletePromo)
}
