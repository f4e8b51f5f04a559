package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/dmitrijs2005/otvetbot/internal/filex"
)

// FileStore keeps accounts as a JSON array of
// {"identifier": ..., "session_token": ...} objects.
//
// A file that fails to decode is moved to <path>.bak by the next Save.
type FileStore struct {
	path  string
	codec TokenCodec

	mu      sync.Mutex
	corrupt bool
}

func NewFileStore(path string, opts ...Option) *FileStore {
	o := buildOptions(opts)
	return &FileStore{path: path, codec: o.codec}
}

func (s *FileStore) Path() string { return s.path }

// BackupPath is where Save moves a file that failed to decode.
func (s *FileStore) BackupPath() string { return s.path + ".bak" }

func (s *FileStore) Load(_ context.Context) (Accounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt = false

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Accounts{}, nil
	}
	if err != nil {
		return Accounts{}, fmt.Errorf("%w: %w: read %s: %v", ErrStorageUnreadable, ErrStorageLocked, s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Accounts{}, nil
	}

	var stored Accounts
	if err := json.Unmarshal(data, &stored); err != nil {
		s.corrupt = true
		return Accounts{}, fmt.Errorf("%w: decode %s: %v", ErrStorageUnreadable, s.path, err)
	}
	return openAll(s.codec, stored)
}

func (s *FileStore) Save(_ context.Context, accounts Accounts) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := sealAll(s.codec, accounts)
	if err != nil {
		return err
	}
	if sealed == nil {
		sealed = Accounts{}
	}

	data, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if s.corrupt {
		if err := os.Rename(s.path, s.BackupPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("back up unreadable %s: %w", s.path, err)
		}
		s.corrupt = false
	}
	if err := filex.WriteFileAtomic(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}
