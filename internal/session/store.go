// Package session keeps the ephemeral shopping-run state (purchased flags
// and quantity corrections) between requests.  The state is deliberately
// not part of the shopping_items table: it only commits when the purchase
// is finished, and it evaporates if the user walks away.  Redis holds it
// with a TTL; without Redis an in-process store keeps single-instance
// deployments working.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luanafs/pantry-api/internal/stock"
)

// Store loads and saves one shopping session per user.
type Store interface {
	Load(ctx context.Context, userID uint64) (*stock.Session, error)
	Save(ctx context.Context, userID uint64, s *stock.Session) error
	Clear(ctx context.Context, userID uint64) error
}

// New returns a Redis-backed store, or the in-process fallback when no
// Redis client is available.
func New(rdb *redis.Client) Store {
	if rdb == nil {
		return &memoryStore{sessions: map[uint64]*stock.Session{}}
	}
	return &redisStore{rdb: rdb, ttl: loadTTL()}
}

// loadTTL reads SHOPPING_SESSION_TTL (default 24h).  The TTL bounds how
// long an abandoned shopping run survives.
func loadTTL() time.Duration {
	if v := os.Getenv("SHOPPING_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 24 * time.Hour
}

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func sessionKey(userID uint64) string {
	return fmt.Sprintf("shopsession:%d", userID)
}

func (s *redisStore) Load(ctx context.Context, userID uint64) (*stock.Session, error) {
	bs, err := s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return stock.NewSession(), nil
	}
	if err != nil {
		return nil, err
	}
	var sess stock.Session
	if err := json.Unmarshal(bs, &sess); err != nil {
		// A corrupt blob should not wedge the shopping list; start over.
		return stock.NewSession(), nil
	}
	normalize(&sess)
	return &sess, nil
}

func (s *redisStore) Save(ctx context.Context, userID uint64, sess *stock.Session) error {
	bs, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.SetEx(ctx, sessionKey(userID), bs, s.ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

// memoryStore is the single-process fallback used when Redis is down or
// not configured.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[uint64]*stock.Session
}

func (m *memoryStore) Load(_ context.Context, userID uint64) (*stock.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return stock.NewSession(), nil
	}
	// Hand back a copy so callers never mutate shared state directly.
	cp := stock.NewSession()
	for id, v := range sess.Purchased {
		cp.Purchased[id] = v
	}
	for id, q := range sess.Quantities {
		cp.Quantities[id] = q
	}
	return cp, nil
}

func (m *memoryStore) Save(_ context.Context, userID uint64, sess *stock.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = sess
	return nil
}

func (m *memoryStore) Clear(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// normalize guards against nil maps after JSON decoding.
func normalize(sess *stock.Session) {
	if sess.Purchased == nil {
		sess.Purchased = map[uint64]bool{}
	}
	if sess.Quantities == nil {
		sess.Quantities = map[uint64]uint32{}
	}
}
