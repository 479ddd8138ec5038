package dataaccess

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"go.etcd.io/bbolt"
)

var (
	ticketsBucket = []byte("tickets")
	guildsBucket  = []byte("guilds")
)

// NewBoltStores creates the stores backed by the given bbolt database and
// makes sure its buckets exist.
func NewBoltStores(l *slog.Logger, db *bbolt.DB) (*Stores, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{ticketsBucket, guildsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("error creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Stores{
		Backend: BackendBolt,
		Tickets: &boltTicketDal{
			l:  l.With(slog.String(logging.KeyDal, ticketDalName)),
			db: db,
		},
		Guilds: &boltGuildDal{
			l:  l.With(slog.String(logging.KeyDal, guildDalName)),
			db: db,
		},
		ping: func(ctx context.Context) error {
			defer monitoring.Observe("health_check", "ping", BackendBolt)()
			return db.View(func(tx *bbolt.Tx) error {
				if tx.Bucket(ticketsBucket) == nil {
					return fmt.Errorf("tickets bucket is missing")
				}
				return nil
			})
		},
		close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}

type boltTicketDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the bbolt database.
	db *bbolt.DB
}

func (d *boltTicketDal) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	defer monitoring.Observe(ticketDalName, "save_ticket", BackendBolt)()
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("error marshalling ticket: %w", err)
	}

	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(ticketsBucket).Put([]byte(ticket.ChannelID), payload)
	})
}

func (d *boltTicketDal) GetTicket(ctx context.Context, channelID string) (*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "get_ticket", BackendBolt)()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ticket := new(entities.Ticket)
	err := d.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket(ticketsBucket).Get([]byte(channelID))
		if payload == nil {
			return fmt.Errorf("ticket %s: %w", channelID, ErrNotFound)
		}
		if err := json.Unmarshal(payload, ticket); err != nil {
			return fmt.Errorf("error unmarshalling ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (d *boltTicketDal) DeleteTicket(ctx context.Context, channelID string) error {
	defer monitoring.Observe(ticketDalName, "delete_ticket", BackendBolt)()
	if err := ctx.Err(); err != nil {
		return err
	}

	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(ticketsBucket).Delete([]byte(channelID))
	})
}

func (d *boltTicketDal) GetOpenTicketByOwner(ctx context.Context, ownerID string) (*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "get_open_ticket_by_owner", BackendBolt)()

	var found *entities.Ticket
	err := d.scan(ctx, func(t *entities.Ticket) bool {
		if t.OwnerID == ownerID && !t.Closed {
			found = t
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("open ticket of %s: %w", ownerID, ErrNotFound)
	}
	return found, nil
}

func (d *boltTicketDal) ListTickets(ctx context.Context, guildID string) ([]*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "list_tickets", BackendBolt)()

	tickets := make([]*entities.Ticket, 0)
	err := d.scan(ctx, func(t *entities.Ticket) bool {
		if t.GuildID == guildID {
			tickets = append(tickets, t)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// scan calls fn for every ticket until fn returns false.
func (d *boltTicketDal) scan(ctx context.Context, fn func(t *entities.Ticket) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return d.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(ticketsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			t := new(entities.Ticket)
			if err := json.Unmarshal(v, t); err != nil {
				d.l.Warn("Skipping unreadable ticket",
					slog.String(logging.KeyChannel, string(k)),
					slog.String(logging.KeyError, err.Error()),
				)
				continue
			}
			if !fn(t) {
				return nil
			}
		}
		return nil
	})
}

type boltGuildDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the bbolt database.
	db *bbolt.DB
}

func (g *boltGuildDal) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	defer monitoring.Observe(guildDalName, "save_guild", BackendBolt)()
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(guild)
	if err != nil {
		return fmt.Errorf("error marshalling guild: %w", err)
	}

	return g.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(guildsBucket).Put([]byte(guild.ID), payload)
	})
}

func (g *boltGuildDal) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	defer monitoring.Observe(guildDalName, "get_guild_by_id", BackendBolt)()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	guild := new(entities.Guild)
	err := g.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket(guildsBucket).Get([]byte(id))
		if payload == nil {
			return fmt.Errorf("guild %s: %w", id, ErrNotFound)
		}
		if err := json.Unmarshal(payload, guild); err != nil {
			return fmt.Errorf("error unmarshalling guild: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return guild, nil
}
