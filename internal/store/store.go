package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/shutter/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketPrefs = []byte("prefs")

// Preference keys
const (
	keySearchQuery  = "searchQuery"
	keyLastResultID = "lastResultId"
	keyIsPolling    = "isPolling"
)

// lockTimeout bounds how long an operation waits for another process holding the file
const lockTimeout = 2 * time.Second

// PrefsStore implements domain.PrefsStore using BoltDB.
// It is shared by the UI and the poll job, which may run on different
// goroutines or in different processes (gallery and daemon). The database is
// opened for each operation and closed right after, so no process holds the
// file lock between operations.
type PrefsStore struct {
	path string
	mu   sync.Mutex // Serializes opens within this process

	// Memory-only mode (empty dir)
	memMu sync.RWMutex
	mem   map[string][]byte
}

// NewPrefsStore creates the preference database under dir if needed.
// An empty dir keeps everything in memory.
func NewPrefsStore(dir string) (*PrefsStore, error) {
	if dir == "" {
		return &PrefsStore{mem: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &PrefsStore{path: filepath.Join(dir, "prefs.db")}
	err := s.withDB(false, func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketPrefs)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close is a no-op kept for io.Closer callers; the database is never held open.
func (s *PrefsStore) Close() error {
	return nil
}

// withDB opens the database, runs fn and closes it again. Read-only opens
// take a shared lock, so concurrent readers in other processes do not block.
func (s *PrefsStore) withDB(readOnly bool, fn func(db *bolt.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: lockTimeout, ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("failed to open bolt db: %w", err)
	}
	defer db.Close()
	return fn(db)
}

// === Generic helpers ===

func (s *PrefsStore) get(key string, dest interface{}) bool {
	if s.mem != nil {
		s.memMu.RLock()
		data, ok := s.mem[key]
		s.memMu.RUnlock()
		return ok && json.Unmarshal(data, dest) == nil
	}

	var data []byte
	err := s.withDB(true, func(db *bolt.DB) error {
		return db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketPrefs)
			if b == nil {
				return nil
			}
			if v := b.Get([]byte(key)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
	})
	if err != nil || data == nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (s *PrefsStore) set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.mem != nil {
		s.memMu.Lock()
		s.mem[key] = data
		s.memMu.Unlock()
		return nil
	}

	err = s.withDB(false, func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			b, err := tx.CreateBucketIfNotExists(bucketPrefs)
			if err != nil {
				return err
			}
			return b.Put([]byte(key), data)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// === Preferences ===

func (s *PrefsStore) StoredQuery() string {
	var q string
	s.get(keySearchQuery, &q)
	return q
}

func (s *PrefsStore) SetStoredQuery(query string) error {
	return s.set(keySearchQuery, query)
}

func (s *PrefsStore) LastResultID() string {
	var id string
	s.get(keyLastResultID, &id)
	return id
}

func (s *PrefsStore) SetLastResultID(id string) error {
	return s.set(keyLastResultID, id)
}

func (s *PrefsStore) IsPolling() bool {
	var enabled bool
	s.get(keyIsPolling, &enabled)
	return enabled
}

func (s *PrefsStore) SetPolling(enabled bool) error {
	return s.set(keyIsPolling, enabled)
}

func (s *PrefsStore) State() domain.PollState {
	return domain.PollState{
		LastResultID:   s.LastResultID(),
		StoredQuery:    s.StoredQuery(),
		PollingEnabled: s.IsPolling(),
	}
}

var _ domain.PrefsStore = (*PrefsStore)(nil)
