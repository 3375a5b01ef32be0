package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"careeragent/internal/model"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "careeragent.Scoring"

// ─── Messages ────────────────────────────────────────────────────────────────

type RunScoringRequest struct{}

type RunScoringResponse struct {
	ScoredCount int `json:"scored_count"`
}

type ListJobsRequest struct {
	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"`
}

type ListJobsResponse struct {
	Jobs []model.Job `json:"jobs"`
}

type UpdateStatusRequest struct {
	JobID  int64  `json:"job_id"`
	Status string `json:"status"`
}

type UpdateStatusResponse struct {
	Job *model.Job `json:"job"`
}

// ScoringServer is implemented by Server.
type ScoringServer interface {
	RunScoring(context.Context, *RunScoringRequest) (*RunScoringResponse, error)
	ListJobs(context.Context, *ListJobsRequest) (*ListJobsResponse, error)
	UpdateStatus(context.Context, *UpdateStatusRequest) (*UpdateStatusResponse, error)
}

// RegisterScoringServer mounts srv on s.
func RegisterScoringServer(s grpc.ServiceRegistrar, srv ScoringServer) {
	s.RegisterService(&scoringServiceDesc, srv)
}

var scoringServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScoringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunScoring", Handler: unary(ScoringServer.RunScoring, "RunScoring")},
		{MethodName: "ListJobs", Handler: unary(ScoringServer.ListJobs, "ListJobs")},
		{MethodName: "UpdateStatus", Handler: unary(ScoringServer.UpdateStatus, "UpdateStatus")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "careeragent/scoring",
}

// unary adapts a typed method to grpc.MethodDesc's handler signature.
func unary[Req, Resp any](call func(ScoringServer, context.Context, *Req) (*Resp, error), method string) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ScoringServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ScoringServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ─── Client ──────────────────────────────────────────────────────────────────

// ScoringClient calls a remote Scoring service.
type ScoringClient struct {
	cc grpc.ClientConnInterface
}

// NewScoringClient wraps cc.
func NewScoringClient(cc grpc.ClientConnInterface) *ScoringClient {
	return &ScoringClient{cc: cc}
}

func (c *ScoringClient) RunScoring(ctx context.Context, in *RunScoringRequest, opts ...grpc.CallOption) (*RunScoringResponse, error) {
	out := new(RunScoringResponse)
	if err := c.invoke(ctx, "RunScoring", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScoringClient) ListJobs(ctx context.Context, in *ListJobsRequest, opts ...grpc.CallOption) (*ListJobsResponse, error) {
	out := new(ListJobsResponse)
	if err := c.invoke(ctx, "ListJobs", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScoringClient) UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*UpdateStatusResponse, error) {
	out := new(UpdateStatusResponse)
	if err := c.invoke(ctx, "UpdateStatus", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScoringClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}
