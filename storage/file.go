package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStorage keeps each key in its own file under a directory, written
// atomically via tmp+rename. It has no native change notification, so
// Watch polls the key at a short interval.
type FileStorage struct {
	dir      string
	interval time.Duration

	mu   sync.Mutex
	last map[string]string // last value seen per watched key
	done chan struct{}
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStorage{
		dir:      dir,
		interval: 250 * time.Millisecond,
		last:     make(map[string]string),
		done:     make(chan struct{}),
	}, nil
}

func (f *FileStorage) path(key string) string {
	// Keys carry namespace colons; keep file names flat.
	name := strings.ReplaceAll(key, ":", "_") + ".json"
	return filepath.Join(f.dir, name)
}

func (f *FileStorage) Get(key string) (string, bool) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (f *FileStorage) Set(key, value string) error {
	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FileStorage) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileStorage) Watch(key string, fn func(string)) (cancel func()) {
	stop := make(chan struct{})
	if v, ok := f.Get(key); ok {
		f.mu.Lock()
		f.last[key] = v
		f.mu.Unlock()
	}
	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-f.done:
				return
			case <-ticker.C:
				v, ok := f.Get(key)
				if !ok {
					continue
				}
				f.mu.Lock()
				changed := f.last[key] != v
				if changed {
					f.last[key] = v
				}
				f.mu.Unlock()
				if changed {
					fn(v)
				}
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}

// Close stops every poller started by Watch.
func (f *FileStorage) Close() {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}
