package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/env"
)

// entry is the document stored for each key
type entry struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

// Provider implements a key-value store on top of a single MongoDB collection
// with a unique index on the key field
type Provider struct {
	connectionURI  string
	databaseName   string
	collectionName string
	client         *mongo.Client
}

// NewProvider creates a new provider and loads values in from the environment
func NewProvider() (*Provider, error) {
	connectionURI, err := env.GetEnv("database connection URI", "MONGO_URI")
	if err != nil {
		return nil, err
	}

	return New(connectionURI,
		env.GetEnvOrDefault("MONGO_DB_NAME", "bulletin"),
		env.GetEnvOrDefault("MONGO_COLLECTION", "kv")), nil
}

// New creates a provider for the given connection URI, database and collection
func New(connectionURI string, databaseName string, collectionName string) *Provider {
	return &Provider{
		connectionURI:  connectionURI,
		databaseName:   databaseName,
		collectionName: collectionName,
		client:         nil,
	}
}

// Connect connects to and pings the primary, then creates the key index
func (p *Provider) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(p.connectionURI))
	if err != nil {
		return errors.Wrap(err, "could not connect to the database")
	}

	// Ping the primary
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "could not ping the database")
	}

	p.client = client

	// Initialize any collections/indices
	err = p.initialize(ctx)
	if err != nil {
		return err
	}

	return nil
}

// Disconnect closes the client
func (p *Provider) Disconnect(ctx context.Context) error {
	if p.client == nil {
		return nil
	}

	err := p.client.Disconnect(ctx)
	if err != nil {
		return err
	}

	return nil
}

// Create anything needed for the database,
// like indices
func (p *Provider) initialize(ctx context.Context) error {
	log.Info().Str("collection", p.collectionName).Msg("initializing the MongoDB database")

	_, err := p.entries().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"key": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "could not create the key index")
	}

	return nil
}

func (p *Provider) entries() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection(p.collectionName)
}

// Get retrieves the value stored under key
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	result := p.entries().FindOne(ctx, bson.D{{Key: "key", Value: key}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(key)
	}

	var stored entry
	err := result.Decode(&stored)
	if err != nil {
		return nil, errors.Wrapf(err, "could not get key '%s'", key)
	}

	return []byte(stored.Value), nil
}

// Set upserts the document for key
func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	filter := bson.D{{Key: "key", Value: key}}
	replacement := entry{Key: key, Value: string(value)}
	_, err := p.entries().ReplaceOne(ctx, filter, replacement, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrapf(err, "could not set key '%s'", key)
	}

	return nil
}

// Delete removes the document for key, if any
func (p *Provider) Delete(ctx context.Context, key string) error {
	_, err := p.entries().DeleteOne(ctx, bson.D{{Key: "key", Value: key}})
	if err != nil {
		return errors.Wrapf(err, "could not delete key '%s'", key)
	}

	return nil
}

// ListByPrefix finds every document whose key matches an anchored prefix regex,
// which the key index can serve
func (p *Provider) ListByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	filter := bson.D{{Key: "key", Value: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}}
	cursor, err := p.entries().Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "could not list prefix '%s'", prefix)
	}

	var stored []entry
	err = cursor.All(ctx, &stored)
	if err != nil {
		return nil, errors.Wrapf(err, "could not list prefix '%s'", prefix)
	}

	// Return a non-nil slice even when nothing matched
	values := make([][]byte, 0, len(stored))
	for _, e := range stored {
		values = append(values, []byte(e.Value))
	}

	return values, nil
}
