package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/client"
)

// PingTimeout bounds the daemon check so a hung socket cannot delay the build
const PingTimeout = 5 * time.Second

// NewClient connects to the daemon configured by the DOCKER_* environment.
// The caller must Close the client.
func NewClient(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if _, err := cli.Ping(pingCtx); err != nil {
		cli.Close()
		return nil, fmt.Errorf(`Docker daemon not accessible at %s: %w

The linux build runs inside the node-build container.
Ensure Docker is running:
  • Linux: sudo systemctl start docker`, cli.DaemonHost(), err)
	}

	return cli, nil
}
