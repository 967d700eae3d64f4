package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// storageFilePermissions 存储文件权限
	storageFilePermissions = 0o600

	// storageDirPermissions 存储目录权限
	storageDirPermissions = 0o750
)

// ErrCorruptStorage 存储文件不是合法的 JSON
var ErrCorruptStorage = errors.New("storage file is corrupted")

// fileDocument 存储文件内容，按 origin 分区
type fileDocument struct {
	Origins map[string]map[string]string `json:"origins"`
}

// FileStorage 基于 JSON 文件的存储。同一文件可被多个 origin 共享，
// 每次写入都会重新读取文件，以保留其他进程写入的数据。
type FileStorage struct {
	mu     sync.Mutex
	path   string
	origin string
	closed bool
}

// NewFileStorage 创建文件存储
func NewFileStorage(path, origin string) *FileStorage {
	return &FileStorage{path: path, origin: origin}
}

// Get 读取键值
func (s *FileStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Origins[s.origin][key]
	return v, ok, nil
}

// Set 写入键值
func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	doc, err := s.load()
	if err != nil && !errors.Is(err, ErrCorruptStorage) {
		return err
	}
	if doc.Origins[s.origin] == nil {
		doc.Origins[s.origin] = make(map[string]string)
	}
	doc.Origins[s.origin][key] = value
	return s.save(doc)
}

// Remove 删除键
func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	doc, err := s.load()
	if err != nil && !errors.Is(err, ErrCorruptStorage) {
		return err
	}
	values, ok := doc.Origins[s.origin]
	if !ok {
		return nil
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(doc.Origins, s.origin)
	}
	return s.save(doc)
}

// Close 标记存储已关闭，文件本身保留
func (s *FileStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// load 读取存储文件，文件不存在时返回空文档。
// 文件损坏时移动到 .corrupt 备份并返回空文档和 ErrCorruptStorage。
func (s *FileStorage) load() (*fileDocument, error) {
	doc := &fileDocument{Origins: make(map[string]map[string]string)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("reading storage file: %w", err)
	}

	if err := json.Unmarshal(data, doc); err != nil {
		corruptPath := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UTC().UnixNano())
		fresh := &fileDocument{Origins: make(map[string]map[string]string)}
		if renameErr := os.Rename(s.path, corruptPath); renameErr != nil {
			return fresh, fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptStorage, err, renameErr)
		}
		return fresh, fmt.Errorf("%w: %w (moved to %s)", ErrCorruptStorage, err, corruptPath)
	}

	if doc.Origins == nil {
		doc.Origins = make(map[string]map[string]string)
	}
	return doc, nil
}

// save 原子写入存储文件
func (s *FileStorage) save(doc *fileDocument) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storageDirPermissions); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling storage: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp storage file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing storage file: %w", err)
	}
	if err := os.Chmod(tmpPath, storageFilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting storage file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing storage file: %w", err)
	}
	return nil
}
