// Package server exposes an Engine over gRPC and hot-reloads its routing
// rules and context patterns.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/pauljbernard/headelf/api/headelf/v1"
	"github.com/pauljbernard/headelf/internal/engine"
	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/pattern"
	"github.com/pauljbernard/headelf/internal/routing"
)

// Config holds gRPC server configuration.
type Config struct {
	Port         int
	RulesPath    string
	PatternsPath string
}

// Server implements the headelf gRPC service.
type Server struct {
	engine *engine.Engine
	cfg    Config
	logger *zap.Logger

	mu           sync.RWMutex
	rulesHash    string
	patternsHash string

	grpcServer *grpc.Server
}

// New loads rules and patterns into eng and prepares the gRPC server.
func New(eng *engine.Engine, cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{engine: eng, cfg: cfg, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}

	s.grpcServer = grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.ChainUnaryInterceptor(s.logCalls),
	)
	pb.RegisterHeadelfServiceServer(s.grpcServer, s)
	return s, nil
}

// Serve starts the gRPC server on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.ServeOn(lis)
}

// ServeOn starts the gRPC server on the given listener.
func (s *Server) ServeOn(lis net.Listener) error {
	s.logger.Info("serving", zap.String("addr", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// GracefulStop gracefully shuts down the gRPC server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Reload re-reads the rule and pattern files and swaps them into the
// engine. Nothing is swapped if either file is invalid.
func (s *Server) Reload() error {
	rules, rulesHash, err := routing.LoadConfigWithHash(s.cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load routing rules: %w", err)
	}
	patterns, patternsHash, err := pattern.LoadFile(s.cfg.PatternsPath)
	if err != nil {
		return fmt.Errorf("failed to load context patterns: %w", err)
	}

	s.applyRules(rules, rulesHash)
	s.applyPatterns(patterns, patternsHash)
	return nil
}

// ReloadSource re-reads a single file. The other source is left untouched,
// and an invalid file keeps the configuration already loaded.
func (s *Server) ReloadSource(src Source) error {
	switch src {
	case SourceRules:
		rules, hash, err := routing.LoadConfigWithHash(s.cfg.RulesPath)
		if err != nil {
			return fmt.Errorf("failed to load routing rules: %w", err)
		}
		s.applyRules(rules, hash)
	case SourcePatterns:
		patterns, hash, err := pattern.LoadFile(s.cfg.PatternsPath)
		if err != nil {
			return fmt.Errorf("failed to load context patterns: %w", err)
		}
		s.applyPatterns(patterns, hash)
	default:
		return fmt.Errorf("unknown reload source %q", src)
	}
	return nil
}

func (s *Server) applyRules(cfg *routing.Config, hash string) {
	if !s.swapHash(&s.rulesHash, hash) {
		return
	}
	s.engine.SetRules(cfg)
	s.logger.Info("routing rules loaded",
		zap.String("path", s.cfg.RulesPath),
		zap.String("hash", hash),
		zap.Int("rules", len(cfg.Rules)))
}

func (s *Server) applyPatterns(reg *pattern.Registry, hash string) {
	if !s.swapHash(&s.patternsHash, hash) {
		return
	}
	s.engine.SetPatterns(reg)
	s.logger.Info("context patterns loaded",
		zap.String("path", s.cfg.PatternsPath),
		zap.String("hash", hash))
}

// swapHash stores next in *field and reports whether it differed.
func (s *Server) swapHash(field *string, next string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *field == next {
		return false
	}
	*field = next
	return true
}

// Hashes returns the SHA-256 of the loaded rule and pattern files.
func (s *Server) Hashes() (rules, patterns string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rulesHash, s.patternsHash
}

func (s *Server) Detect(ctx context.Context, req *pb.DetectRequest) (*pb.DetectResponse, error) {
	return &pb.DetectResponse{Results: s.engine.DetectContext(req.Input)}, nil
}

func (s *Server) Route(ctx context.Context, req *pb.RouteRequest) (*pb.RouteResponse, error) {
	if !req.Role.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", req.Role)
	}
	if !req.Decision.Type.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown decision type %q", req.Decision.Type)
	}
	if req.Decision.ID == "" {
		req.Decision.ID = uuid.NewString()
	}

	results, err := s.engine.RouteDecision(ctx, req.Role, req.Decision, req.Context)
	if errors.Is(err, engine.ErrNoHandlers) {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &pb.RouteResponse{DecisionID: req.Decision.ID, Results: results}, nil
}

func (s *Server) Analyze(ctx context.Context, req *pb.AnalyzeRequest) (*pb.AnalyzeResponse, error) {
	industries, err := industriesOrActive(req.Industries, s.engine)
	if err != nil {
		return nil, err
	}
	return &pb.AnalyzeResponse{Outcomes: s.engine.AnalyzeAcrossIndustries(ctx, industries, req.Context)}, nil
}

func (s *Server) Compliance(ctx context.Context, req *pb.ComplianceRequest) (*pb.ComplianceResponse, error) {
	industries, err := industriesOrActive(req.Industries, s.engine)
	if err != nil {
		return nil, err
	}
	return &pb.ComplianceResponse{Outcomes: s.engine.ComplianceRequirements(ctx, industries, req.Context)}, nil
}

func (s *Server) ListIndustries(ctx context.Context, _ *pb.ListIndustriesRequest) (*pb.ListIndustriesResponse, error) {
	return s.industries(), nil
}

func (s *Server) SetActive(ctx context.Context, req *pb.SetActiveRequest) (*pb.ListIndustriesResponse, error) {
	for _, ind := range req.Industries {
		if !ind.Valid() {
			return nil, status.Errorf(codes.InvalidArgument, "unknown industry %q", ind)
		}
	}

	switch req.Mode {
	case pb.ModeSet, "":
		s.engine.SetActiveIndustries(req.Industries)
	case pb.ModeActivate:
		s.engine.Activate(req.Industries...)
	case pb.ModeDeactivate:
		s.engine.Deactivate(req.Industries...)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown mode %q", req.Mode)
	}
	return s.industries(), nil
}

func (s *Server) industries() *pb.ListIndustriesResponse {
	rulesHash, patternsHash := s.Hashes()
	return &pb.ListIndustriesResponse{
		Registered:   s.engine.RegisteredIndustries(),
		Active:       s.engine.ActiveIndustries(),
		RulesHash:    rulesHash,
		PatternsHash: patternsHash,
	}
}

func industriesOrActive(requested []model.IndustryVertical, eng *engine.Engine) ([]model.IndustryVertical, error) {
	if len(requested) == 0 {
		return eng.ActiveIndustries(), nil
	}
	for _, ind := range requested {
		if !ind.Valid() {
			return nil, status.Errorf(codes.InvalidArgument, "unknown industry %q", ind)
		}
	}
	return requested, nil
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	fields := []zap.Field{
		zap.String("method", info.FullMethod),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		s.logger.Warn("rpc failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Debug("rpc", fields...)
	}
	return resp, err
}
