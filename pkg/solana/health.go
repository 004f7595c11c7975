package solana

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// EndpointHealth is the outcome of a getHealth probe.
type EndpointHealth struct {
	URL     string        `json:"url"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// Health probes the client's own endpoint.
func (c *Client) Health(ctx context.Context) EndpointHealth {
	return probe(ctx, c.rpc, c.endpoint, c.timeout)
}

func probe(ctx context.Context, client *rpc.Client, url string, timeout time.Duration) EndpointHealth {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	status, err := client.GetHealth(ctx)
	latency := time.Since(start)
	if err != nil {
		return EndpointHealth{URL: url, Latency: latency, Error: err.Error()}
	}
	if status != rpc.HealthOk {
		return EndpointHealth{URL: url, Latency: latency, Error: "unhealthy: " + status}
	}
	return EndpointHealth{URL: url, OK: true, Latency: latency}
}
