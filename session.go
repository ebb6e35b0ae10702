package climatechat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/schema"
)

// Session holds one conversation's rolling history window.
type Session struct {
	ID        string                    `json:"session_id"`
	CreatedAt time.Time                 `json:"created_at"`
	Turns     []schema.ConversationTurn `json:"turns"`
}

// SessionStore persists conversation history between requests.
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, bool)
	// AppendTurn records one exchange and trims the window to the
	// configured maximum.
	AppendTurn(ctx context.Context, id string, turn schema.ConversationTurn) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// MemSessionStore keeps sessions in process memory. Expiry is checked
// lazily on access.
type MemSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*memSession
	ttl      time.Duration
	maxTurns int
}

type memSession struct {
	session Session
	touched time.Time
}

func NewMemSessionStore(ttl time.Duration, maxTurns int) *MemSessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &MemSessionStore{
		sessions: make(map[string]*memSession),
		ttl:      ttl,
		maxTurns: maxTurns,
	}
}

func (m *MemSessionStore) Create(context.Context) (*Session, error) {
	s := Session{ID: uuid.New().String(), CreatedAt: time.Now()}
	m.mu.Lock()
	m.sessions[s.ID] = &memSession{session: s, touched: time.Now()}
	m.mu.Unlock()
	return &s, nil
}

func (m *MemSessionStore) Get(_ context.Context, id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(ms.touched) > m.ttl {
		delete(m.sessions, id)
		return nil, false
	}
	out := ms.session
	out.Turns = append([]schema.ConversationTurn(nil), ms.session.Turns...)
	return &out, true
}

func (m *MemSessionStore) AppendTurn(_ context.Context, id string, turn schema.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	ms.session.Turns = append(ms.session.Turns, turn)
	if n := len(ms.session.Turns); n > m.maxTurns {
		ms.session.Turns = ms.session.Turns[n-m.maxTurns:]
	}
	ms.touched = time.Now()
	return nil
}

func (m *MemSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemSessionStore) Close() error { return nil }

// RedisSessionStore persists each session as a JSON value under
// sessionKeyPrefix+id with a TTL refreshed on every append.
type RedisSessionStore struct {
	rdb      *redis.Client
	ttl      time.Duration
	maxTurns int
}

const sessionKeyPrefix = "climatechat:sess:"

// RedisSessionOptions configures the redis-backed session store.
type RedisSessionOptions struct {
	Address  string
	Username string
	Password string
	DB       int
	TTL      time.Duration
	MaxTurns int
}

func NewRedisSessionStore(opt RedisSessionOptions) (*RedisSessionStore, error) {
	if opt.TTL <= 0 {
		opt.TTL = time.Hour
	}
	if opt.MaxTurns <= 0 {
		opt.MaxTurns = 20
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opt.Address,
		Username: opt.Username,
		Password: opt.Password,
		DB:       opt.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("session store: redis ping failed: %w", err)
	}
	return &RedisSessionStore{rdb: rdb, ttl: opt.TTL, maxTurns: opt.MaxTurns}, nil
}

func (s *RedisSessionStore) Create(ctx context.Context) (*Session, error) {
	sess := Session{ID: uuid.New().String(), CreatedAt: time.Now()}
	if err := s.write(ctx, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, bool) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warnf("session store: redis get failed for %s: %v", id, err)
		return nil, false
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		logger.Warnf("session store: corrupt session %s dropped: %v", id, err)
		_ = s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
		return nil, false
	}
	return &sess, true
}

func (s *RedisSessionStore) AppendTurn(ctx context.Context, id string, turn schema.ConversationTurn) error {
	sess, ok := s.Get(ctx, id)
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	sess.Turns = append(sess.Turns, turn)
	if n := len(sess.Turns); n > s.maxTurns {
		sess.Turns = sess.Turns[n-s.maxTurns:]
	}
	return s.write(ctx, sess)
}

func (s *RedisSessionStore) write(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session store: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: redis set: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

func (s *RedisSessionStore) Close() error { return s.rdb.Close() }
