package valuta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// this file contains the persistence primitive shared by every repository: a whole
// JSON document per file, read in full and replaced atomically.

// FileCache keeps the raw content of recently read files keyed by path. An entry is
// only served while the file's modification time and size are unchanged.
type FileCache struct {
	entries *lru.Cache[string, cachedFile]
}

type cachedFile struct {
	modTime time.Time
	size    int64
	content []byte
}

// NewFileCache returns a cache holding at most size files.
func NewFileCache(size int) *FileCache {
	if size <= 0 {
		size = 16
	}
	entries, err := lru.New[string, cachedFile](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &FileCache{entries: entries}
}

// read returns the content of path, from the cache when its stamp still matches.
func (c *FileCache) read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if e, ok := c.entries.Get(path); ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.content, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c.entries.Add(path, cachedFile{modTime: info.ModTime(), size: info.Size(), content: content})
	return content, nil
}

func (c *FileCache) invalidate(path string) {
	c.entries.Remove(path)
}

// JSONFile is a single JSON document stored at Path.
type JSONFile struct {
	Path  string
	Cache *FileCache // nil disables caching
}

// Read decodes the document into v. It returns false, with v untouched, when the
// file does not exist.
func (f *JSONFile) Read(v any) (bool, error) {
	var content []byte
	var err error
	if f.Cache != nil {
		content, err = f.Cache.read(f.Path)
	} else {
		content, err = os.ReadFile(f.Path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot read %q: %w", f.Path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return false, fmt.Errorf("format error %q: %w", f.Path, err)
	}
	return true, nil
}

// WriteAtomic encodes v and replaces the document with a temp-write-then-rename, so a
// reader sees either the previous or the new content, never a partial one.
func (f *JSONFile) WriteAtomic(v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", f.Path, err)
	}
	content = append(content, '\n')

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("cannot create folder for %q: %w", f.Path, err)
	}
	if f.Cache != nil {
		defer f.Cache.invalidate(f.Path)
	}
	if err := renameio.WriteFile(f.Path, content, 0o644); err != nil {
		return fmt.Errorf("cannot write %q: %w", f.Path, err)
	}
	return nil
}
