package dataaccess

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

const (
	// BackendBolt stores everything in a single bbolt file.
	BackendBolt = "bolt"

	// BackendMongo stores everything in MongoDB.
	BackendMongo = "mongo"

	// BackendRedis stores everything in Redis.
	BackendRedis = "redis"
)

// Options selects and configures the store backend.
type Options struct {
	Backend string

	MongoURI string

	BoltPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Stores groups the data access layers of one backend.
type Stores struct {
	// Backend is the name of the backend in use.
	Backend string

	// Tickets is the ticket store.
	Tickets TicketDal

	// Guilds is the guild configuration store.
	Guilds GuildDal

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the backend is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected in the options.
func Open(ctx context.Context, l *slog.Logger, opts Options) (*Stores, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	l = l.With(slog.String("backend", backend))

	switch backend {
	case BackendBolt, "":
		db, err := connection.OpenBolt(opts.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("error opening bolt store: %w", err)
		}
		l.Debug("Opened bolt store", slog.String("path", db.Path()))
		return NewBoltStores(l, db)

	case BackendMongo:
		conn := &connection.MongoDB{ConnectionString: opts.MongoURI}
		client, err := conn.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("error connecting to mongo: %w", err)
		}
		l.Debug("Connected to MongoDB")
		return NewMongoStores(l, client), nil

	case BackendRedis:
		conn := &connection.Redis{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		}
		client, err := conn.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		l.Debug("Connected to Redis")
		return NewRedisStores(l, client), nil

	default:
		l.Error("Unknown store backend", slog.String(logging.KeyError, "unsupported backend"))
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
