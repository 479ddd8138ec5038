package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tickets"

func ticketKey(channelID string) string {
	return redisKeyPrefix + ":ticket:" + channelID
}

func ownerKey(ownerID string) string {
	return redisKeyPrefix + ":owner:" + ownerID
}

func guildTicketsKey(guildID string) string {
	return redisKeyPrefix + ":guild-tickets:" + guildID
}

func guildKey(guildID string) string {
	return redisKeyPrefix + ":guild:" + guildID
}

// NewRedisStores creates the stores backed by the given Redis client.
//
// A ticket is kept as a JSON string under its channel key, with set indexes
// of channel IDs per owner and per guild.
func NewRedisStores(l *slog.Logger, client *redis.Client) *Stores {
	return &Stores{
		Backend: BackendRedis,
		Tickets: &redisTicketDal{
			l:      l.With(slog.String(logging.KeyDal, ticketDalName)),
			client: client,
		},
		Guilds: &redisGuildDal{
			l:      l.With(slog.String(logging.KeyDal, guildDalName)),
			client: client,
		},
		ping: func(ctx context.Context) error {
			return connection.PingRedis(ctx, client)
		},
		close: func(context.Context) error {
			return client.Close()
		},
	}
}

type redisTicketDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the redis client.
	client *redis.Client
}

func (d *redisTicketDal) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	defer monitoring.Observe(ticketDalName, "save_ticket", BackendRedis)()

	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("error marshalling ticket: %w", err)
	}

	_, err = d.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, ticketKey(ticket.ChannelID), payload, 0)
		p.SAdd(ctx, ownerKey(ticket.OwnerID), ticket.ChannelID)
		p.SAdd(ctx, guildTicketsKey(ticket.GuildID), ticket.ChannelID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving ticket: %w", err)
	}
	return nil
}

func (d *redisTicketDal) GetTicket(ctx context.Context, channelID string) (*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "get_ticket", BackendRedis)()

	return d.get(ctx, channelID)
}

func (d *redisTicketDal) DeleteTicket(ctx context.Context, channelID string) error {
	defer monitoring.Observe(ticketDalName, "delete_ticket", BackendRedis)()

	ticket, err := d.get(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	_, err = d.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, ticketKey(channelID))
		p.SRem(ctx, ownerKey(ticket.OwnerID), channelID)
		p.SRem(ctx, guildTicketsKey(ticket.GuildID), channelID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}
	return nil
}

func (d *redisTicketDal) GetOpenTicketByOwner(ctx context.Context, ownerID string) (*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "get_open_ticket_by_owner", BackendRedis)()

	tickets, err := d.members(ctx, ownerKey(ownerID))
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		if !t.Closed {
			return t, nil
		}
	}
	return nil, fmt.Errorf("open ticket of %s: %w", ownerID, ErrNotFound)
}

func (d *redisTicketDal) ListTickets(ctx context.Context, guildID string) ([]*entities.Ticket, error) {
	defer monitoring.Observe(ticketDalName, "list_tickets", BackendRedis)()

	return d.members(ctx, guildTicketsKey(guildID))
}

// members loads every ticket referenced by an index set. Index entries whose
// ticket is gone are dropped from the set.
func (d *redisTicketDal) members(ctx context.Context, indexKey string) ([]*entities.Ticket, error) {
	ids, err := d.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading index %s: %w", indexKey, err)
	}

	tickets := make([]*entities.Ticket, 0, len(ids))
	for _, id := range ids {
		t, err := d.get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			if err := d.client.SRem(ctx, indexKey, id).Err(); err != nil {
				d.l.Warn("Error removing stale index entry",
					slog.String(logging.KeyChannel, id),
					slog.String(logging.KeyError, err.Error()),
				)
			}
			continue
		} else if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (d *redisTicketDal) get(ctx context.Context, channelID string) (*entities.Ticket, error) {
	payload, err := d.client.Get(ctx, ticketKey(channelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("ticket %s: %w", channelID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}

	ticket := new(entities.Ticket)
	if err := json.Unmarshal(payload, ticket); err != nil {
		return nil, fmt.Errorf("error unmarshalling ticket: %w", err)
	}
	return ticket, nil
}

type redisGuildDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the redis client.
	client *redis.Client
}

func (g *redisGuildDal) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	defer monitoring.Observe(guildDalName, "save_guild", BackendRedis)()

	payload, err := json.Marshal(guild)
	if err != nil {
		return fmt.Errorf("error marshalling guild: %w", err)
	}
	if err := g.client.Set(ctx, guildKey(guild.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}
	return nil
}

func (g *redisGuildDal) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	defer monitoring.Observe(guildDalName, "get_guild_by_id", BackendRedis)()

	payload, err := g.client.Get(ctx, guildKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("guild %s: %w", id, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}

	guild := new(entities.Guild)
	if err := json.Unmarshal(payload, guild); err != nil {
		return nil, fmt.Errorf("error unmarshalling guild: %w", err)
	}
	return guild, nil
}
