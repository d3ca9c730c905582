// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"

	"storybook-builder-api/internal/domain/entity"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// SessionStore 创作会话存储
type SessionStore interface {
	Create(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	// Update 原子地读取、修改并写回会话，返回写入后的会话。
	// fn 返回错误时不写入；实现可能在冲突后重新调用 fn。
	Update(ctx context.Context, id string, fn func(sess *entity.Session) error) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
