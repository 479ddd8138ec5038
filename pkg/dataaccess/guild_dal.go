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

type mongoGuildDal struct {
	// l is the logger.
	l *slog.Logger

	// collection is the guild collection.
	collection *mongo.Collection
}

// NewMongoGuildDal creates a guild data access layer backed by Mongo.
func NewMongoGuildDal(l *slog.Logger, db *mongo.Database) GuildDal {
	return &mongoGuildDal{
		l:          l.With(slog.String(logging.KeyDal, guildDalName)),
		collection: db.Collection(guildsCollection),
	}
}

func (g *mongoGuildDal) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	defer monitoring.Observe(guildDalName, "save_guild", BackendMongo)()

	opts := options.Update().SetUpsert(true)
	_, err := g.collection.UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		return fmt.Errorf("error updating guild: %w", err)
	}
	return nil
}

// GetGuildByID gets a guild by ID.
func (g *mongoGuildDal) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	defer monitoring.Observe(guildDalName, "get_guild_by_id", BackendMongo)()

	guild := new(entities.Guild)
	err := g.collection.FindOne(ctx, bson.M{"id": id}).Decode(guild)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("guild %s: %w", id, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	return guild, nil
}
