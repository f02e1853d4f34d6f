package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

// DefaultPingTimeout bounds the reachability check.
const DefaultPingTimeout = 2 * time.Second

// Document is one JSON record of a collection.
type Document map[string]any

// Filter keeps documents whose top-level Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Order sorts query results by creation time.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Store is the remote document store, backed by Redis.
//
// Each document is stored as a JSON string; each collection keeps a sorted
// set of ids scored by creation time in microseconds.
type Store struct {
	client      *redis.Client
	keys        Keys
	pingTimeout time.Duration
	disabled    atomic.Bool
	now         func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keys = NewKeys(prefix) }
}

// WithPingTimeout bounds CheckConnection.
func WithPingTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pingTimeout = d
		}
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client:      client,
		keys:        NewKeys(DefaultKeyPrefix),
		pingTimeout: DefaultPingTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnableNetwork re-opens the network channel.
func (s *Store) EnableNetwork() {
	s.disabled.Store(false)
}

// DisableNetwork makes every operation fail with domain.ErrNetworkDisabled
// until EnableNetwork is called.
func (s *Store) DisableNetwork() {
	s.disabled.Store(true)
}

// NetworkEnabled reports whether the network channel is open.
func (s *Store) NetworkEnabled() bool {
	return !s.disabled.Load()
}

// CheckConnection re-enables the network channel and pings Redis.
func (s *Store) CheckConnection(ctx context.Context) bool {
	s.EnableNetwork()

	pctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	return s.client.Ping(pctx).Err() == nil
}

// Query returns the documents of collection matching every filter.
func (s *Store) Query(ctx context.Context, collection string, filters []Filter, order Order) ([]Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	index := s.keys.Index(collection)
	var ids []string
	var err error
	if order == Descending {
		ids, err = s.client.ZRevRange(ctx, index, 0, -1).Result()
	} else {
		ids, err = s.client.ZRange(ctx, index, 0, -1).Result()
	}
	if err != nil {
		return nil, wrapErr("query "+collection, err)
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.Doc(collection, id)
	}
	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, wrapErr("query "+collection, err)
	}

	docs := make([]Document, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Index entry without a document; skip it.
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s %s: %w", collection, ids[i], err)
		}
		if matchAll(doc, filters) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Get returns one document or a not-found error.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.keys.Doc(collection, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFound(collection, id)
		}
		return nil, wrapErr("get "+collection, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", collection, id, err)
	}
	return doc, nil
}

// Create stores doc and returns it with its id and timestamps.
// A doc without "id" gets a new UUID; a doc with one replaces any record
// under that id.
func (s *Store) Create(ctx context.Context, collection string, doc Document) (Document, error) {
	docs, err := s.CreateMany(ctx, collection, []Document{doc})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// CreateMany stores docs in one pipeline. Documents keep their input order
// in the collection index.
func (s *Store) CreateMany(ctx context.Context, collection string, docs []Document) ([]Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []Document{}, nil
	}

	now := s.now().UTC()
	out := make([]Document, 0, len(docs))
	pipe := s.client.TxPipeline()

	for i, in := range docs {
		doc := s.prepare(in, now)
		id := doc["id"].(string)

		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s %s: %w", collection, id, err)
		}

		pipe.Set(ctx, s.keys.Doc(collection, id), data, 0)
		pipe.ZAdd(ctx, s.keys.Index(collection), redis.Z{
			Score:  float64(createdAt(doc, now).UnixMicro() + int64(i)),
			Member: id,
		})
		out = append(out, doc)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, wrapErr("create "+collection, err)
	}
	return out, nil
}

// Update merges partial into an existing document and bumps updated_at.
func (s *Store) Update(ctx context.Context, collection, id string, partial Document) (Document, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	key := s.keys.Doc(collection, id)
	var merged Document

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.NotFound(collection, id)
			}
			return err
		}

		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal %s %s: %w", collection, id, err)
		}
		for k, v := range partial {
			doc[k] = v
		}
		doc["id"] = id
		doc["updated_at"] = s.now().UTC().Format(time.RFC3339Nano)

		out, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s: %w", collection, id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		merged = doc
		return err
	}

	if err := s.client.Watch(ctx, txf, key); err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, wrapErr("update "+collection, err)
	}
	return merged, nil
}

// Delete removes a document. Deleting a missing id is a not-found error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.guard(); err != nil {
		return err
	}

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.keys.Doc(collection, id))
		pipe.ZRem(ctx, s.keys.Index(collection), id)
		return nil
	})
	if err != nil {
		return wrapErr("delete "+collection, err)
	}
	if del.Val() == 0 {
		return domain.NotFound(collection, id)
	}
	return nil
}

// Count returns the number of indexed documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	n, err := s.client.ZCard(ctx, s.keys.Index(collection)).Result()
	if err != nil {
		return 0, wrapErr("count "+collection, err)
	}
	return n, nil
}

func (s *Store) guard() error {
	if s.disabled.Load() {
		return domain.ErrNetworkDisabled
	}
	return nil
}

// prepare copies in and fills id, created_at and updated_at.
func (s *Store) prepare(in Document, now time.Time) Document {
	doc := make(Document, len(in)+3)
	for k, v := range in {
		doc[k] = v
	}
	if id, _ := doc["id"].(string); id == "" {
		doc["id"] = uuid.NewString()
	}
	if createdAt(doc, time.Time{}).IsZero() {
		doc["created_at"] = now.Format(time.RFC3339Nano)
	}
	doc["updated_at"] = now.Format(time.RFC3339Nano)
	return doc
}

// createdAt reads the created_at field, or def when absent or zero.
func createdAt(doc Document, def time.Time) time.Time {
	var t time.Time
	switch v := doc["created_at"].(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return def
		}
		t = parsed
	default:
		return def
	}
	if t.IsZero() {
		return def
	}
	return t
}

func matchAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if fmt.Sprint(doc[f.Field]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}
