package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	interrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the credential pair as a JSON file. When the file
// cannot be written (read-only disk, missing permissions) the store
// degrades to memory-only for the process lifetime: the session keeps
// working, it just will not survive a restart.
type FileStore struct {
	path string
	log  zerolog.Logger

	lock     sync.RWMutex
	pair     *Pair
	degraded bool
}

type FileStoreOption func(*FileStore)

func WithFileStoreLogger(log zerolog.Logger) FileStoreOption {
	return func(fs *FileStore) {
		fs.log = log
	}
}

// NewFileStore loads any previously persisted pair from path. A missing
// or malformed file reads as absent.
func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}

	fs := &FileStore{
		path: path,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(fs)
	}

	fs.pair = fs.load()
	return fs, nil
}

func (fs *FileStore) Get() (*Pair, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if fs.pair == nil {
		return nil, nil
	}
	copied := *fs.pair
	return &copied, nil
}

func (fs *FileStore) Set(pair Pair) error {
	if err := validatePair(pair); err != nil {
		return err
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.pair = &pair

	if err := fs.persist(pair); err != nil {
		fs.markDegraded(err)
	}
	return nil
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.pair = nil

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		fs.markDegraded(err)
	}
	return nil
}

// Degraded reports whether persistence has failed and the store is
// running memory-only.
func (fs *FileStore) Degraded() bool {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.degraded
}

func (fs *FileStore) load() *Pair {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil
	}

	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		fs.log.Warn().Err(err).Str("path", fs.path).Msg("discarding malformed credential file")
		return nil
	}
	if !pair.Complete() {
		return nil
	}
	return &pair
}

func (fs *FileStore) persist(pair Pair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return interrors.Wrapf(err, "[FileStore persist] marshal")
	}
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return interrors.Wrapf(interrors.ErrStorageUnavailable, "[FileStore persist] mkdir: %s", err)
		}
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return interrors.Wrapf(interrors.ErrStorageUnavailable, "[FileStore persist] write: %s", err)
	}
	return nil
}

// markDegraded is called with fs.lock held.
func (fs *FileStore) markDegraded(err error) {
	if !fs.degraded {
		fs.log.Warn().Err(err).Str("path", fs.path).Msg("credential storage unavailable, session will not survive a restart")
	}
	fs.degraded = true
}
