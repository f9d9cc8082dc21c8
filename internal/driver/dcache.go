package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"flintc/internal/project"
)

// irSchema changes whenever IRPayload changes shape; entries written under
// another schema read as misses.
const irSchema uint16 = 2

// IRCache keeps rendered backend output on disk, one msgpack file per
// IRKey, sharded by the first key byte. It is safe for concurrent use.
type IRCache struct {
	mu  sync.RWMutex
	dir string
}

// IRPayload is one cached lowering result.
type IRPayload struct {
	Schema uint16 `msgpack:"schema"`

	Target       string         `msgpack:"target"`
	Verification string         `msgpack:"verification"`
	Input        project.Digest `msgpack:"key"`

	// Text is the rendered program; Units names its top-level units
	// (Yul objects or Move modules) in output order.
	Text  string   `msgpack:"text"`
	Units []string `msgpack:"units"`
}

// OpenIRCache opens the cache of app under the user cache directory.
func OpenIRCache(app string) (*IRCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate cache directory: %w", err)
	}
	return NewIRCache(filepath.Join(base, app))
}

// NewIRCache opens a cache rooted at dir, creating it if needed.
func NewIRCache(dir string) (*IRCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &IRCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *IRCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *IRCache) entry(key project.Digest) string {
	name := key.String()
	return filepath.Join(c.dir, "ir", name[:2], name+".mp")
}

// Put stores payload under key. The file appears atomically, so a
// concurrent Get sees either the old entry or the new one.
func (c *IRCache) Put(key project.Digest, payload *IRPayload) error {
	if c == nil {
		return nil
	}
	payload.Schema, payload.Input = irSchema, key
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", payload.Target, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.entry(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Get loads the entry for key into out. A missing entry, one from another
// schema and one stored under a different key are all misses.
func (c *IRCache) Get(key project.Digest, out *IRPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.entry(key))
	c.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return out.Schema == irSchema && out.Input == key, nil
}

// Len counts the stored entries.
func (c *IRCache) Len() (int, error) {
	if c == nil {
		return 0, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	err := filepath.WalkDir(filepath.Join(c.dir, "ir"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mp") {
			n++
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return n, err
}

// DropAll removes every entry and reports how many there were.
func (c *IRCache) DropAll() (int, error) {
	n, err := c.Len()
	if err != nil || c == nil {
		return n, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(c.dir, "ir")); err != nil {
		return 0, err
	}
	return n, nil
}
