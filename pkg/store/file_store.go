package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"sync"
)

const fileExt = ".bin"

// FileStore keeps one gob-encoded file per group inside Dir.
type FileStore struct {
	Dir string

	mu sync.Mutex
}

type fileRecord struct {
	Meta    Meta
	Entries map[string][]byte
}

// NewFileStore returns a store rooted at dir. An empty dir means DefaultDir().
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return &FileStore{Dir: dir}, nil
}

// Path returns the file backing group.
func (s *FileStore) Path(group string) string {
	return filepath.Join(s.Dir, group+fileExt)
}

func (s *FileStore) Load(ctx context.Context, group string) (Entries, Meta, bool, error) {
	if err := ValidateGroup(group); err != nil {
		return nil, Meta{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.Lock()
	raw, err := os.ReadFile(s.Path(group))
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Meta{}, false, nil
	}
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("store: read %q: %w", group, err)
	}

	var record fileRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&record); err != nil {
		return nil, Meta{}, false, fmt.Errorf("store: decode %q: %w", group, err)
	}
	entries := Entries(record.Entries)
	if entries == nil {
		entries = Entries{}
	}
	return entries, record.Meta, true, nil
}

func (s *FileStore) Save(ctx context.Context, group string, entries Entries, meta Meta) (Meta, error) {
	if err := ValidateGroup(group); err != nil {
		return Meta{}, err
	}
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(fileRecord{Meta: meta, Entries: entries}); err != nil {
		return Meta{}, fmt.Errorf("store: encode %q: %w", group, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return Meta{}, fmt.Errorf("store: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, group+".*.tmp")
	if err != nil {
		return Meta{}, fmt.Errorf("store: write %q: %w", group, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Meta{}, fmt.Errorf("store: write %q: %w", group, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Meta{}, fmt.Errorf("store: write %q: %w", group, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(group)); err != nil {
		os.Remove(tmp.Name())
		return Meta{}, fmt.Errorf("store: replace %q: %w", group, err)
	}
	return cloneMeta(meta), nil
}

// DefaultDir returns <user config dir>/GM<hash of username>/MenuConfig.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("store: resolve config dir: %w", err)
	}
	return filepath.Join(base, UserDirName(currentUsername()), "MenuConfig"), nil
}

// UserDirName derives the per-user directory name from username.
func UserDirName(username string) string {
	h := fnv.New32a()
	h.Write([]byte(username))
	return fmt.Sprintf("GM%X", h.Sum32())
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if name := os.Getenv(key); name != "" {
			return name
		}
	}
	return "default"
}
