package headelfv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "headelf.v1.HeadelfService"

const (
	DetectMethod         = "/" + ServiceName + "/Detect"
	RouteMethod          = "/" + ServiceName + "/Route"
	AnalyzeMethod        = "/" + ServiceName + "/Analyze"
	ComplianceMethod     = "/" + ServiceName + "/Compliance"
	ListIndustriesMethod = "/" + ServiceName + "/ListIndustries"
	SetActiveMethod      = "/" + ServiceName + "/SetActive"
)

// HeadelfServiceServer is the server API for the headelf service.
type HeadelfServiceServer interface {
	Detect(context.Context, *DetectRequest) (*DetectResponse, error)
	Route(context.Context, *RouteRequest) (*RouteResponse, error)
	Analyze(context.Context, *AnalyzeRequest) (*AnalyzeResponse, error)
	Compliance(context.Context, *ComplianceRequest) (*ComplianceResponse, error)
	ListIndustries(context.Context, *ListIndustriesRequest) (*ListIndustriesResponse, error)
	SetActive(context.Context, *SetActiveRequest) (*ListIndustriesResponse, error)
}

// RegisterHeadelfServiceServer registers srv on s.
func RegisterHeadelfServiceServer(s grpc.ServiceRegistrar, srv HeadelfServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the headelf service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HeadelfServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Detect", DetectMethod, HeadelfServiceServer.Detect),
		unary("Route", RouteMethod, HeadelfServiceServer.Route),
		unary("Analyze", AnalyzeMethod, HeadelfServiceServer.Analyze),
		unary("Compliance", ComplianceMethod, HeadelfServiceServer.Compliance),
		unary("ListIndustries", ListIndustriesMethod, HeadelfServiceServer.ListIndustries),
		unary("SetActive", SetActiveMethod, HeadelfServiceServer.SetActive),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "headelf/v1/headelf.json",
}

func unary[Req, Resp any](name, fullMethod string, call func(HeadelfServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HeadelfServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(HeadelfServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// HeadelfServiceClient is the client API for the headelf service.
type HeadelfServiceClient interface {
	Detect(ctx context.Context, in *DetectRequest, opts ...grpc.CallOption) (*DetectResponse, error)
	Route(ctx context.Context, in *RouteRequest, opts ...grpc.CallOption) (*RouteResponse, error)
	Analyze(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error)
	Compliance(ctx context.Context, in *ComplianceRequest, opts ...grpc.CallOption) (*ComplianceResponse, error)
	ListIndustries(ctx context.Context, in *ListIndustriesRequest, opts ...grpc.CallOption) (*ListIndustriesResponse, error)
	SetActive(ctx context.Context, in *SetActiveRequest, opts ...grpc.CallOption) (*ListIndustriesResponse, error)
}

type headelfServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewHeadelfServiceClient returns a client that encodes calls with Codec.
func NewHeadelfServiceClient(cc grpc.ClientConnInterface) HeadelfServiceClient {
	return &headelfServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *headelfServiceClient) Detect(ctx context.Context, in *DetectRequest, opts ...grpc.CallOption) (*DetectResponse, error) {
	return invoke[DetectResponse](ctx, c.cc, DetectMethod, in, opts)
}

func (c *headelfServiceClient) Route(ctx context.Context, in *RouteRequest, opts ...grpc.CallOption) (*RouteResponse, error) {
	return invoke[RouteResponse](ctx, c.cc, RouteMethod, in, opts)
}

func (c *headelfServiceClient) Analyze(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	return invoke[AnalyzeResponse](ctx, c.cc, AnalyzeMethod, in, opts)
}

func (c *headelfServiceClient) Compliance(ctx context.Context, in *ComplianceRequest, opts ...grpc.CallOption) (*ComplianceResponse, error) {
	return invoke[ComplianceResponse](ctx, c.cc, ComplianceMethod, in, opts)
}

func (c *headelfServiceClient) ListIndustries(ctx context.Context, in *ListIndustriesRequest, opts ...grpc.CallOption) (*ListIndustriesResponse, error) {
	return invoke[ListIndustriesResponse](ctx, c.cc, ListIndustriesMethod, in, opts)
}

func (c *headelfServiceClient) SetActive(ctx context.Context, in *SetActiveRequest, opts ...grpc.CallOption) (*ListIndustriesResponse, error) {
	return invoke[ListIndustriesResponse](ctx, c.cc, SetActiveMethod, in, opts)
}
