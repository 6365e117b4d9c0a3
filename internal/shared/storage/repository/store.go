// Package repository 数据库无关的业务逻辑存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"qa-server/internal/shared/storage"
	"qa-server/internal/shared/storage/dbutil"
)

// Store 通用存储实现
// 实现了 storage.PersistentStore 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

var _ storage.PersistentStore = (*Store)(nil)

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect 返回当前方言
func (s *Store) Dialect() dbutil.Dialect {
	return s.dialect
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// execer *sql.DB 与 *sql.Tx 的公共子集
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx 在事务中执行 fn，fn 返回错误时回滚
//
// 事务持有期间 fn 只能使用传入的 tx（SQLite 连接池大小为 1）
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// translate 将驱动错误转换为 storage 领域错误
func (s *Store) translate(err error) error {
	if err == nil {
		return nil
	}
	if s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	}
	return err
}

// expectAffected Update/Delete 未命中任何行时返回 ErrNotFound
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// countRows 执行 COUNT(*) 查询
func (s *Store) countRows(ctx context.Context, query string, args ...any) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
