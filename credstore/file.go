package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	fileDirPerm  = 0o700
	fileKeyPerm  = 0o600
	maxRecordLen = 1 << 20 // 1 MiB, far above any legitimate record
)

// File is a Store that keeps one file per logical key under a private
// directory, typically ~/.campuspulse. Writes go through a temp file and
// rename so a crash mid-write leaves either the old or the new record,
// never a torn one.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a file-backed store.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("credstore: empty directory")
	}
	if err := os.MkdirAll(dir, fileDirPerm); err != nil {
		return nil, fmt.Errorf("credstore: create %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *File) read(key string) ([]byte, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(raw) > maxRecordLen {
		return nil, nil
	}
	return raw, nil
}

func (f *File) write(key string, raw []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, fileKeyPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (f *File) remove(keys ...string) error {
	var firstErr error
	for _, key := range keys {
		err := os.Remove(f.path(key))
		if err != nil && !errors.Is(err, fs.ErrNotExist) && firstErr == nil {
			firstErr = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return firstErr
}

func (f *File) Load(ctx context.Context) (*Record, error) {
	raw, err := f.read(KeyUser)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil || !rec.valid() {
		// Corrupt record: discard, never block startup.
		_ = f.Clear(ctx)
		return nil, ErrCorruptRecord
	}
	return &rec, nil
}

func (f *File) Save(_ context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := f.write(KeyUser, raw); err != nil {
		return err
	}
	return f.write(KeyAuthToken, []byte(rec.Token))
}

func (f *File) Clear(_ context.Context) error {
	return f.remove(KeyUser, KeyAuthToken)
}

func (f *File) Token(_ context.Context) (string, error) {
	raw, err := f.read(KeyAuthToken)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (f *File) RememberMe(_ context.Context) (bool, string, error) {
	flag, err := f.read(KeyRememberMe)
	if err != nil {
		return false, "", err
	}
	email, err := f.read(KeyRememberedEmail)
	if err != nil {
		return false, "", err
	}
	return string(flag) == "true", string(email), nil
}

func (f *File) SetRememberMe(_ context.Context, email string) error {
	if err := f.write(KeyRememberMe, []byte("true")); err != nil {
		return err
	}
	return f.write(KeyRememberedEmail, []byte(email))
}

func (f *File) ClearRememberMe(_ context.Context) error {
	return f.remove(KeyRememberMe, KeyRememberedEmail)
}
