package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/repository"
)

var storeTracer = otel.Tracer("redis.session")

// DefaultKeyPrefix 会话键默认前缀
const DefaultKeyPrefix = "storybook:session:"

// maxUpdateAttempts WATCH 冲突时最多尝试的次数
const maxUpdateAttempts = 8

// ErrUpdateConflict 多次重试后仍与其他写入冲突
var ErrUpdateConflict = errors.New("session update conflict")

// SessionStore 以 JSON 快照形式把会话存入 Redis，多个 studio 实例可共享
type SessionStore struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewSessionStore 创建 Redis 会话存储
func NewSessionStore(client *Client, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

// Key 返回会话对应的 Redis 键
func (s *SessionStore) Key(id string) string {
	return s.prefix + id
}

func (s *SessionStore) Create(ctx context.Context, session *entity.Session) error {
	ctx, span := storeTracer.Start(ctx, "session.Create",
		trace.WithAttributes(attribute.String("session.id", session.ID)))
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := s.client.rdb.SetNX(ctx, s.Key(session.ID), data, s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

// Get 读取会话快照
func (s *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	ctx, span := storeTracer.Start(ctx, "session.Get",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	session, err := s.load(ctx, s.client.rdb, id)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			span.RecordError(err)
		}
		return nil, err
	}
	return session, nil
}

// load 通过给定连接读取并解码会话，事务内外共用
func (s *SessionStore) load(ctx context.Context, cmd redis.StringCmdable, id string) (*entity.Session, error) {
	data, err := cmd.Get(ctx, s.Key(id)).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Update 在 WATCH 事务内读取、修改并写回会话。
//
// 键在读取之后被其他连接改写时 EXEC 失败，重新读取最新快照后再次调用 fn，
// 因此 fn 可能执行多次，只能修改传入的会话。
func (s *SessionStore) Update(ctx context.Context, id string, fn func(sess *entity.Session) error) (*entity.Session, error) {
	ctx, span := storeTracer.Start(ctx, "session.Update",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	key := s.Key(id)
	var updated *entity.Session
	txf := func(tx *redis.Tx) error {
		session, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		}); err != nil {
			return err
		}
		updated = session
		return nil
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := s.client.rdb.Watch(ctx, txf, key)
		if err == nil {
			span.SetAttributes(attribute.Int("session.update.attempts", attempt))
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			span.RecordError(err)
		}
		return nil, err
	}

	span.RecordError(ErrUpdateConflict)
	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, id)
}

// Save 覆盖已存在的会话并刷新过期时间
func (s *SessionStore) Save(ctx context.Context, session *entity.Session) error {
	ctx, span := storeTracer.Start(ctx, "session.Save",
		trace.WithAttributes(attribute.String("session.id", session.ID)))
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := s.client.rdb.SetXX(ctx, s.Key(session.ID), data, s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	if !ok {
		return repository.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	ctx, span := storeTracer.Start(ctx, "session.Delete",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	n, err := s.client.rdb.Del(ctx, s.Key(id)).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return repository.ErrSessionNotFound
	}
	return nil
}

// Count 通过 SCAN 统计当前前缀下的会话数
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	ctx, span := storeTracer.Start(ctx, "session.Count")
	defer span.End()

	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.rdb.Scan(ctx, cursor, s.prefix+"*", 200).Result()
		if err != nil {
			span.RecordError(err)
			return 0, fmt.Errorf("failed to scan sessions: %w", err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	span.SetAttributes(attribute.Int("session.count", total))
	return total, nil
}
