// Package storage 提供按 origin 隔离的键值持久化，语义与浏览器 localStorage 一致：
// 读取缺失的键返回未命中而非错误，写入覆盖旧值。
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/config"
)

// ErrClosed 表示存储已关闭
var ErrClosed = errors.New("storage is closed")

// KVStorage 键值存储接口
type KVStorage interface {
	// Get 读取键值，键不存在时 ok 为 false
	Get(key string) (value string, ok bool, err error)
	// Set 写入键值
	Set(key, value string) error
	// Remove 删除键，键不存在时不报错
	Remove(key string) error
	// Close 释放底层资源
	Close() error
}

// New 按配置创建存储
func New(cfg config.StorageConfig) (KVStorage, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		return NewMemoryStorage(), nil
	case config.StorageDriverFile:
		return NewFileStorage(expandPath(cfg.Path), cfg.Origin), nil
	case config.StorageDriverSQLite:
		return NewSQLiteStorage(expandPath(cfg.Path), cfg.Origin)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// Open 按配置创建存储，失败时退回内存存储
func Open(cfg config.StorageConfig, logger *logrus.Logger) KVStorage {
	kv, err := New(cfg)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"driver": cfg.Driver,
			"path":   cfg.Path,
			"error":  err.Error(),
		}).Warn("Persistent storage unavailable, falling back to in-memory storage")
		return NewMemoryStorage()
	}
	return kv
}

// expandPath 将相对路径解析到用户主目录下
func expandPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path)
}
