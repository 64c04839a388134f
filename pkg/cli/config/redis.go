package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/service/realtime"
)

// Redis configures the pub/sub channel shared by server instances. Leaving
// the address empty keeps dashboard events in-process.
type Redis struct {
	addr     string
	password string
	db       int
	channel  string
}

func (x *Redis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port) for multi-instance dashboard push",
			Category:    "Redis",
			Sources:     cli.EnvVars("IAWASHING_REDIS_ADDR"),
			Destination: &x.addr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Redis",
			Sources:     cli.EnvVars("IAWASHING_REDIS_PASSWORD"),
			Destination: &x.password,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Redis",
			Sources:     cli.EnvVars("IAWASHING_REDIS_DB"),
			Destination: &x.db,
		},
		&cli.StringFlag{
			Name:        "redis-channel",
			Usage:       "Redis pub/sub channel for dashboard events",
			Category:    "Redis",
			Value:       realtime.DefaultChannel,
			Sources:     cli.EnvVars("IAWASHING_REDIS_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

func (x Redis) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", x.addr),
		slog.Int("db", x.db),
		slog.String("channel", x.channel),
		slog.Int("password.len", len(x.password)),
	)
}

// IsEnabled reports whether a Redis address is configured
func (x *Redis) IsEnabled() bool {
	return x.addr != ""
}

// Configure connects to Redis and returns a bridge relaying into hub. It
// returns nil when Redis is not configured. The caller starts and stops the
// bridge and closes the client.
func (x *Redis) Configure(ctx context.Context, hub *realtime.Hub) (*realtime.RedisBridge, redis.UniversalClient, error) {
	if !x.IsEnabled() {
		return nil, nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     x.addr,
		Password: x.password,
		DB:       x.db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", x.addr))
	}

	var opts []realtime.RedisOption
	if x.channel != "" {
		opts = append(opts, realtime.WithChannel(x.channel))
	}
	return realtime.NewRedisBridge(client, hub, opts...), client, nil
}
