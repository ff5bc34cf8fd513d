package redis

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/env"
)

// scanBatch is the COUNT hint given to each SCAN call
const scanBatch = 100

// Provider implements a key-value store against a Redis server.
// Records are stored as plain string values under their keys
type Provider struct {
	options *redis.Options
	client  *redis.Client
}

// NewProvider creates a new provider and loads values in from the environment
func NewProvider() (*Provider, error) {
	addr := env.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
	password := env.GetEnvOrDefault("REDIS_PASSWORD", "")

	database := 0
	if env.GetEnvOrDefault("REDIS_DB", "") != "" {
		var err error
		database, err = env.GetIntEnv("redis database number", "REDIS_DB")
		if err != nil {
			return nil, err
		}
	}

	return New(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	}), nil
}

// New creates a provider for the given client options
func New(options *redis.Options) *Provider {
	return &Provider{
		options: options,
	}
}

// Connect creates the client and pings the server
func (p *Provider) Connect(ctx context.Context) error {
	client := redis.NewClient(p.options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return errors.Wrapf(err, "could not connect to redis (%s)", p.options.Addr)
	}

	p.client = client
	return nil
}

// Disconnect closes the client
func (p *Provider) Disconnect(ctx context.Context) error {
	if p.client == nil {
		return nil
	}

	return p.client.Close()
}

// Get retrieves the value stored under key
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, db.NewNotFoundError(key)
		}

		return nil, errors.Wrapf(err, "could not get key '%s'", key)
	}

	return value, nil
}

// Set stores value under key with no expiration
func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	err := p.client.Set(ctx, key, value, 0).Err()
	if err != nil {
		return errors.Wrapf(err, "could not set key '%s'", key)
	}

	return nil
}

// Delete removes key; DEL on a missing key is not an error
func (p *Provider) Delete(ctx context.Context, key string) error {
	err := p.client.Del(ctx, key).Err()
	if err != nil {
		return errors.Wrapf(err, "could not delete key '%s'", key)
	}

	return nil
}

// ListByPrefix scans for every key beginning with prefix
// and fetches their values in a single pipeline
func (p *Provider) ListByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	keys := []string{}
	iter := p.client.Scan(ctx, 0, escapeGlob(prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not scan prefix '%s'", prefix)
	}

	if len(keys) == 0 {
		return [][]byte{}, nil
	}

	pipe := p.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, errors.Wrapf(err, "could not fetch values for prefix '%s'", prefix)
	}

	values := make([][]byte, 0, len(keys))
	for _, cmd := range cmds {
		value, err := cmd.Bytes()
		if err != nil {
			// Deleted between the scan and the fetch
			if err == redis.Nil {
				continue
			}

			return nil, errors.Wrapf(err, "could not fetch values for prefix '%s'", prefix)
		}
		values = append(values, value)
	}

	return values, nil
}

// escapeGlob escapes the characters that SCAN MATCH treats as patterns
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}
