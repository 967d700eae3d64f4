package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/russross/meddler"
	_ "modernc.org/sqlite"
)

const (
	tableKVName = "kv_storage"

	createKVTable = `
		CREATE TABLE IF NOT EXISTS kv_storage (
			owner      TEXT    NOT NULL,
			key        TEXT    NOT NULL,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (owner, key)
		);`
)

var funcTimeNow = time.Now

// kvRow 表示某个 origin 下的一条键值记录
type kvRow struct {
	Owner string `meddler:"owner"`
	Key   string `meddler:"key"`

	Value     string `meddler:"value"`
	UpdatedAt int64  `meddler:"updated_at"`
}

// SQLiteStorage 基于 SQLite 的存储，owner 列保存 origin
type SQLiteStorage struct {
	db     *sql.DB
	origin string
	closed atomic.Bool
}

// NewSQLiteStorage 打开数据库并创建表
func NewSQLiteStorage(path, origin string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, storageDirPermissions); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite storage: %w", err)
	}
	if _, err := db.Exec(createKVTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating %s table: %w", tableKVName, err)
	}
	return &SQLiteStorage{db: db, origin: origin}, nil
}

// Get 读取键值
func (s *SQLiteStorage) Get(key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	var row kvRow
	err := meddler.SQLite.QueryRow(s.db, &row,
		fmt.Sprintf("SELECT * FROM %s WHERE owner = ? AND key = ? LIMIT 1", tableKVName),
		s.origin, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying %s: %w", key, err)
	}
	return row.Value, true, nil
}

// Set 插入或更新键值
func (s *SQLiteStorage) Set(key, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (owner, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`, tableKVName)
	if _, err := s.db.Exec(query, s.origin, key, value, funcTimeNow().Unix()); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Remove 删除键
func (s *SQLiteStorage) Remove(key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE owner = ? AND key = ?", tableKVName)
	if _, err := s.db.Exec(query, s.origin, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Close 关闭数据库，重复调用不报错
func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
