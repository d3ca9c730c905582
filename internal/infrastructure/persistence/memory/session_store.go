// Package memory 提供单实例内存会话存储
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/repository"
	"storybook-builder-api/pkg/metrics"
)

// SessionStore 基于 go-cache 的会话存储，空闲超过 TTL 的会话由后台清理
type SessionStore struct {
	cache *gocache.Cache
	// mu 串行化写入，保证 Update 的读改写不与其他写入交错
	mu sync.Mutex
}

// NewSessionStore 创建内存会话存储
func NewSessionStore(ttl, cleanupInterval time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}

	c := gocache.New(ttl, cleanupInterval)
	c.OnEvicted(func(string, interface{}) {
		metrics.ActiveSessions.Dec()
	})
	return &SessionStore{cache: c}
}

func (s *SessionStore) Create(_ context.Context, session *entity.Session) error {
	if err := s.cache.Add(session.ID, session.Clone(), gocache.DefaultExpiration); err != nil {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	metrics.ActiveSessions.Inc()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*entity.Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return v.(*entity.Session).Clone(), nil
}

// Save 覆盖会话并刷新空闲过期时间
func (s *SessionStore) Save(_ context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Replace(session.ID, session.Clone(), gocache.DefaultExpiration); err != nil {
		return repository.ErrSessionNotFound
	}
	return nil
}

// Update 在写锁内读取、修改并替换会话
func (s *SessionStore) Update(_ context.Context, id string, fn func(sess *entity.Session) error) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(id)
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	session := v.(*entity.Session).Clone()
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.cache.Replace(id, session.Clone(), gocache.DefaultExpiration); err != nil {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Get(id); !ok {
		return repository.ErrSessionNotFound
	}
	s.cache.Delete(id)
	return nil
}

func (s *SessionStore) Count(_ context.Context) (int, error) {
	return s.cache.ItemCount(), nil
}
