package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// JSON配列を1ファイルに保存するコレクション
// 同じプロセス内の読み書きはmuで直列化する。
type jsonFile[T any] struct {
	mu   sync.Mutex
	path string
}

func newJSONFile[T any](dir string, name string) *jsonFile[T] {
	return &jsonFile[T]{path: filepath.Join(dir, name)}
}

// ファイルがなければ [] で作る
func (f *jsonFile[T]) ensure() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(f.path, []byte("[]"), 0o644)
}

func (f *jsonFile[T]) readLocked() ([]T, error) {
	if err := f.ensure(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(f.path), err)
	}

	//BOMと空白を除く。空なら空配列。
	raw = bytes.TrimSpace(bytes.TrimPrefix(raw, utf8BOM))
	if len(raw) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(f.path), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// 一時ファイルに書いてからrenameする
func (f *jsonFile[T]) writeLocked(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(f.path), err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(f.path), err)
	}
	return os.Rename(tmp, f.path)
}

func (f *jsonFile[T]) read() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

// 読み込み→変更→書き込みを1回のロックで行う
func (f *jsonFile[T]) update(fn func(items []T) ([]T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.readLocked()
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return f.writeLocked(next)
}
