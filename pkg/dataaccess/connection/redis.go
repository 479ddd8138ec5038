package connection

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Connect creates the client and pings the server before handing it out.
func (r *Redis) Connect(ctx context.Context) (*redis.Client, error) {
	if strings.TrimSpace(r.Addr) == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})

	if err := PingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// PingRedis pings the server.
func PingRedis(ctx context.Context, client *redis.Client) error {
	defer monitoring.Observe("health_check", "ping", "redis")()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error pinging redis: %w", err)
	}
	return nil
}
