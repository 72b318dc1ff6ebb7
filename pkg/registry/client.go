package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client reads and writes build records for one namespace.
// It is safe for concurrent use.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient creates a registry client scoped to namespace
func NewClient(redisOpts *redis.Options, namespace string) (*Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Dial parses a redis:// URL, connects and verifies the server is reachable
func Dial(ctx context.Context, url, namespace string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}

	client, err := NewClient(opts, namespace)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("registry not reachable at %s: %w", opts.Addr, err)
	}

	return client, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Save writes r, indexes it by creation time and publishes a build event.
// CreatedAtMs is filled in when zero. Saving the same build twice overwrites it.
func (c *Client) Save(ctx context.Context, r *Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid build record: %w", err)
	}

	if r.CreatedAtMs == 0 {
		r.CreatedAtMs = time.Now().UnixMilli()
	}

	hash, err := RecordToHash(r)
	if err != nil {
		return fmt.Errorf("failed to serialize build record: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, BuildKey(c.namespace, r.BuildID), hash)
	pipe.ZAdd(ctx, BuildIndexKey(c.namespace), redis.Z{
		Score:  float64(r.CreatedAtMs),
		Member: r.BuildID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write build record to Redis: %w", err)
	}

	recordJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal build record for event: %w", err)
	}

	if err := c.rdb.Publish(ctx, BuildEventsChannel(c.namespace), recordJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish build event: %w", err)
	}

	return nil
}

// Get retrieves a build record by build identifier.
// Returns (nil, redis.Nil) if the build was never recorded.
func (c *Client) Get(ctx context.Context, buildID string) (*Record, error) {
	hashData, err := c.rdb.HGetAll(ctx, BuildKey(c.namespace, buildID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read build record from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	record, err := HashToRecord(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize build record: %w", err)
	}

	return record, nil
}

// List returns records created at or after sinceMs, newest first.
// A zero sinceMs returns every record.
func (c *Client) List(ctx context.Context, sinceMs int64) ([]*Record, error) {
	minScore := "-inf"
	if sinceMs > 0 {
		minScore = strconv.FormatInt(sinceMs, 10)
	}

	ids, err := c.rdb.ZRevRangeByScore(ctx, BuildIndexKey(c.namespace), &redis.ZRangeBy{
		Min: minScore,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}

	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		record, err := c.Get(ctx, id)
		if IsNotFound(err) {
			// Index entry without a record; skip it
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// Subscription delivers build records as they are saved.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *Record
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of saved records.
// It is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Record {
	return s.events
}

// Errors returns non-fatal decoding errors; offending messages are skipped
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeBuildEvents subscribes to records saved in this namespace.
// Delivery is at-most-once (Redis Pub/Sub).
func (c *Client) SubscribeBuildEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, BuildEventsChannel(c.namespace))

	// Wait for the subscription to be confirmed so no event is missed after return
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to build events: %w", err)
	}

	eventsChan := make(chan *Record, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var record Record
				if err := json.Unmarshal([]byte(msg.Payload), &record); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal build event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &record:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if err is Redis' "key not found" (redis.Nil)
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
