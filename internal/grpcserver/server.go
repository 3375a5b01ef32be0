// Package grpcserver implements the careeragent.Scoring gRPC service and
// the standard health service.
//
// It delegates all business logic to the scoring and tracker services and
// handles only the gRPC transport concerns: error mapping, logging and
// request/response conversion.
package grpcserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"careeragent/internal/outreach"
	"careeragent/internal/pipeline"
	"careeragent/internal/profile"
	"careeragent/internal/scoring"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
)

// Scorer runs one scoring pass over every stored job.
type Scorer interface {
	Score(ctx context.Context) (int, error)
}

// Server implements ScoringServer.
type Server struct {
	scoring Scorer
	tracker *tracker.Service
	log     *zap.Logger
}

// NewServer constructs a Server backed by the given services.
func NewServer(sc Scorer, tr *tracker.Service, log *zap.Logger) *Server {
	return &Server{scoring: sc, tracker: tr, log: log.Named("grpc")}
}

// New builds a grpc.Server with the health and Scoring services mounted.
func New(srv *Server) *grpc.Server {
	log := srv.log
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		recoverInterceptor(log),
		logInterceptor(log),
	))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	RegisterScoringServer(gs, srv)
	return gs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// RunScoring rescores every stored job against the stored profile.
func (s *Server) RunScoring(ctx context.Context, _ *RunScoringRequest) (*RunScoringResponse, error) {
	n, err := s.scoring.Score(ctx)
	if err != nil {
		return nil, s.fail("RunScoring", err)
	}
	return &RunScoringResponse{ScoredCount: n}, nil
}

// ListJobs returns jobs by confidence, optionally filtered.
func (s *Server) ListJobs(ctx context.Context, req *ListJobsRequest) (*ListJobsResponse, error) {
	jobs, err := s.tracker.ListJobs(ctx, store.JobFilter{Status: req.Category, Source: req.Source})
	if err != nil {
		return nil, s.fail("ListJobs", err)
	}
	return &ListJobsResponse{Jobs: jobs}, nil
}

// UpdateStatus applies a manual status transition.
func (s *Server) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*UpdateStatusResponse, error) {
	if req.JobID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "job_id is required")
	}
	job, err := s.tracker.UpdateStatus(ctx, req.JobID, req.Status)
	if err != nil {
		return nil, s.fail("UpdateStatus", err)
	}
	return &UpdateStatusResponse{Job: job}, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Server) fail(method string, err error) error {
	st := toGRPCError(err)
	if status.Code(st) == codes.Internal {
		s.log.Error("rpc failed", zap.String("method", method), zap.Error(err))
	}
	return st
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var tv *tracker.ValidationError
	var pv *profile.ValidationError
	switch {
	case errors.As(err, &tv):
		return status.Error(codes.InvalidArgument, tv.Msg)
	case errors.As(err, &pv):
		return status.Error(codes.InvalidArgument, pv.Msg)
	case errors.Is(err, tracker.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, scoring.ErrNoProfile),
		errors.Is(err, outreach.ErrNoEligibleJob):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, tracker.ErrConflict), errors.Is(err, pipeline.ErrBusy):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, outreach.ErrSenderUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

func logInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("rpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}

func recoverInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if v := recover(); v != nil {
				log.Error("rpc panic", zap.String("method", info.FullMethod), zap.Any("panic", v))
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}
