package client

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	pb "github.com/pauljbernard/headelf/api/headelf/v1"
	"github.com/pauljbernard/headelf/internal/engine"
	"github.com/pauljbernard/headelf/internal/industry/industrytest"
	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/server"
)

func testClient(t *testing.T) *Client {
	t.Helper()

	eng := engine.New()
	eng.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance})
	eng.RegisterHandler(model.Manufacturing, &industrytest.Stub{Industry: model.Manufacturing})
	eng.Activate(model.FinanceInsurance, model.Manufacturing)

	dir := t.TempDir()
	srv, err := server.New(eng, server.Config{
		RulesPath:    filepath.Join(dir, "rules.yaml"),
		PatternsPath: filepath.Join(dir, "patterns.yaml"),
	}, nil)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go srv.ServeOn(lis)

	c, err := New("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		srv.GracefulStop()
	})
	return c
}

func TestClientRoute(t *testing.T) {
	c := testClient(t)

	resp, err := c.Route(context.Background(), model.RoleCFO,
		model.ExecutiveDecision{Type: model.DecisionFinancial, Description: "raise capital for the new plant"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resp.DecisionID)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "financial-planning", resp.Results[0].RuleID)
	require.True(t, resp.Results[0].Success)
}

func TestClientDetect(t *testing.T) {
	c := testClient(t)

	results, err := c.Detect(context.Background(), model.DetectionInput{Text: "bank loan portfolio review", Domain: "firstbank.com"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, model.FinanceInsurance, results[0].Industry)
}

func TestClientAnalyzeAndCompliance(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	analyses, err := c.Analyze(ctx, nil, model.IndustryContext{Description: "expansion"})
	require.NoError(t, err)
	require.Len(t, analyses, 2)

	reqs, err := c.Compliance(ctx, []model.IndustryVertical{model.Manufacturing}, model.IndustryContext{})
	require.NoError(t, err)
	require.Len(t, reqs[model.Manufacturing].Requirements, 1)
}

func TestClientIndustries(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	resp, err := c.SetActive(ctx, pb.ModeDeactivate, []model.IndustryVertical{model.Manufacturing})
	require.NoError(t, err)
	require.Equal(t, []model.IndustryVertical{model.FinanceInsurance}, resp.Active)

	resp, err = c.Industries(ctx)
	require.NoError(t, err)
	require.Len(t, resp.Registered, 2)
	require.Len(t, resp.Active, 1)
}

func TestClientUnreachable(t *testing.T) {
	c, err := New("127.0.0.1:1")
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = c.Industries(ctx)
	require.Error(t, err)
}
