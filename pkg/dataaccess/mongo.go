package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoDatabase = "tickets"

const (
	ticketsCollection = "tickets"
	guildsCollection  = "guilds"
)

// NewMongoStores creates the stores backed by the given Mongo client.
func NewMongoStores(l *slog.Logger, client *mongo.Client) *Stores {
	db := client.Database(mongoDatabase)
	return &Stores{
		Backend: BackendMongo,
		Tickets: NewMongoTicketDal(l, db),
		Guilds:  NewMongoGuildDal(l, db),
		ping: func(ctx context.Context) error {
			return connection.PingMongo(ctx, client)
		},
		close: func(ctx context.Context) error {
			if err := client.Disconnect(ctx); err != nil {
				return fmt.Errorf("error disconnecting from mongo: %w", err)
			}
			return nil
		},
	}
}
