// Package client talks to a remote headelf server.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/pauljbernard/headelf/api/headelf/v1"
	"github.com/pauljbernard/headelf/internal/dispatch"
	"github.com/pauljbernard/headelf/internal/model"
)

// DefaultTimeout applies to calls whose context has no deadline.
const DefaultTimeout = 30 * time.Second

// Client connects to a headelf gRPC server.
type Client struct {
	conn   *grpc.ClientConn
	client pb.HeadelfServiceClient
}

// New creates a gRPC client for addr. Extra dial options are appended to
// the insecure transport default.
func New(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to headelf server: %w", err)
	}
	return &Client{
		conn:   conn,
		client: pb.NewHeadelfServiceClient(conn),
	}, nil
}

// Detect scores input on the server.
func (c *Client) Detect(ctx context.Context, input model.DetectionInput) ([]model.DetectionResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Detect(ctx, &pb.DetectRequest{Input: input})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Route sends a decision for routing. ictx may be nil.
func (c *Client) Route(ctx context.Context, role model.ExecutiveRole, d model.ExecutiveDecision, ictx *model.IndustryContext) (*pb.RouteResponse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return c.client.Route(ctx, &pb.RouteRequest{Role: role, Decision: d, Context: ictx})
}

// Analyze requests analyses from the listed industries, or every active
// industry when the list is empty.
func (c *Client) Analyze(ctx context.Context, industries []model.IndustryVertical, ictx model.IndustryContext) (map[model.IndustryVertical]dispatch.AnalysisOutcome, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Analyze(ctx, &pb.AnalyzeRequest{Industries: industries, Context: ictx})
	if err != nil {
		return nil, err
	}
	return resp.Outcomes, nil
}

// Compliance requests compliance requirements.
func (c *Client) Compliance(ctx context.Context, industries []model.IndustryVertical, ictx model.IndustryContext) (map[model.IndustryVertical]dispatch.ComplianceOutcome, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Compliance(ctx, &pb.ComplianceRequest{Industries: industries, Context: ictx})
	if err != nil {
		return nil, err
	}
	return resp.Outcomes, nil
}

// Industries returns registered and active industries.
func (c *Client) Industries(ctx context.Context) (*pb.ListIndustriesResponse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return c.client.ListIndustries(ctx, &pb.ListIndustriesRequest{})
}

// SetActive changes the server's active set; mode is one of pb.ModeSet,
// pb.ModeActivate or pb.ModeDeactivate.
func (c *Client) SetActive(ctx context.Context, mode string, industries []model.IndustryVertical) (*pb.ListIndustriesResponse, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return c.client.SetActive(ctx, &pb.SetActiveRequest{Mode: mode, Industries: industries})
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, DefaultTimeout)
}
