package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTicketDal struct {
	// l is the logger.
	l *slog.Logger

	// collection is the ticket collection.
	collection *mongo.Collection
}

// NewMongoTicketDal creates a ticket data access layer backed by Mongo.
func NewMongoTicketDal(l *slog.Logger, db *mongo.Database) TicketDal {
	return &mongoTicketDal{
		l:          l.With(slog.String(logging.KeyDal, ticketDalName)),
		collection: db.Collection(ticketsCollection),
	}
}

func (d *mongoTicketDal) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	defer monitoring.Observe(ticketDalName, "save_ticket", BackendMongo)()

	opts := options.Replace().SetUpsert(true)
	_, err := d.collection.ReplaceOne(ctx, bson.M{"channel_id": ticket.ChannelID}, ticket, opts)
	if err != nil {
		return fmt.Errorf("error saving ticket: %w", err)
	}
	return nil
}

func (d *mongoTicketDal) GetTicket(ctx context.Context, channelID string) (*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "get_ticket", BackendMongo)()

	return d.findOne(ctx, bson.M{"channel_id": channelID})
}

func (d *mongoTicketDal) DeleteTicket(ctx context.Context, channelID string) error {
	defer monitoring.Observe(ticketDalName, "delete_ticket", BackendMongo)()

	if _, err := d.collection.DeleteOne(ctx, bson.M{"channel_id": channelID}); err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}
	return nil
}

func (d *mongoTicketDal) GetOpenTicketByOwner(ctx context.Context, ownerID string) (*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "get_open_ticket_by_owner", BackendMongo)()

	return d.findOne(ctx, bson.M{"owner_id": ownerID, "closed": false})
}

func (d *mongoTicketDal) ListTickets(ctx context.Context, guildID string) ([]*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "list_tickets", BackendMongo)()

	cur, err := d.collection.Find(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		return nil, fmt.Errorf("error listing tickets: %w", err)
	}

	tickets := make([]*entities.Ticket, 0)
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("error decoding tickets: %w", err)
	}
	return tickets, nil
}

func (d *mongoTicketDal) findOne(ctx context.Context, filter bson.M) (*entities.Ticket, error) {
	ticket := new(entities.Ticket)
	err := d.collection.FindOne(ctx, filter).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("ticket: %w", ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return ticket, nil
}
