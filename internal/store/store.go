package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sepsiscan/sepsiscan/internal/config"
	apperrors "github.com/sepsiscan/sepsiscan/internal/errors"
	"github.com/sepsiscan/sepsiscan/internal/profile"
)

// Queue names used in BadgerDB.
const (
	QueueOfflineCheckins = "checkins"
	QueueAlertOutbox     = "alerts"
)

// Store provides unified access to SQLite (profiles, history) and BadgerDB
// (offline queue, alert outbox, KV cache).
type Store struct {
	db     *gorm.DB
	badger *badger.DB
	config *config.StorageConfig
}

// New creates a new Store instance.
func New(cfg *config.Config) (*Store, error) {
	sqliteDB, err := sql.Open("sqlite", cfg.Storage.SQLitePath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-64000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&profile.Profile{}, &profile.Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	badgerOpts := badger.DefaultOptions(cfg.Storage.BadgerPath).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &Store{
		db:     db,
		badger: badgerDB,
		config: &cfg.Storage,
	}, nil
}

// NewInMemory opens a throwaway store for tests.
func NewInMemory() (*Store, error) {
	memDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Dialector{Conn: memDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&profile.Profile{}, &profile.Entry{}); err != nil {
		return nil, err
	}

	badgerDB, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}

	return &Store{db: db, badger: badgerDB}, nil
}

// Close closes all database connections.
func (s *Store) Close() error {
	return s.badger.Close()
}

// DB returns the GORM database instance.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ==================== Profile Methods ====================

// CreateProfile persists a new profile.
func (s *Store) CreateProfile(p *profile.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := packProfile(p); err != nil {
		return err
	}
	return s.db.Create(p).Error
}

// GetProfile retrieves a profile with its full history, newest-first.
func (s *Store) GetProfile(id string) (*profile.Profile, error) {
	var p profile.Profile
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	if err := unpackProfile(&p); err != nil {
		return nil, err
	}

	entries, err := s.GetEntries(id, 0, 0)
	if err != nil {
		return nil, err
	}
	p.HistoricalData = entries
	return &p, nil
}

// ListProfiles lists all profiles without their histories.
func (s *Store) ListProfiles() ([]profile.Profile, error) {
	var profiles []profile.Profile
	if err := s.db.Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		if err := unpackProfile(&profiles[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// UpdateProfile saves profile fields; history entries are managed separately.
func (s *Store) UpdateProfile(p *profile.Profile) error {
	if err := packProfile(p); err != nil {
		return err
	}
	return s.db.Save(p).Error
}

// DeleteProfile removes a profile and its entire history.
func (s *Store) DeleteProfile(id string) error {
	if err := s.db.Where("profile_id = ?", id).Delete(&profile.Entry{}).Error; err != nil {
		return err
	}
	res := s.db.Delete(&profile.Profile{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// ==================== Entry Methods ====================

// AppendEntry persists one check-in entry.
func (s *Store) AppendEntry(e *profile.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := packEntry(e); err != nil {
		return err
	}
	return s.db.Create(e).Error
}

// GetEntries retrieves a profile's entries newest-first. limit 0 means all.
func (s *Store) GetEntries(profileID string, limit, offset int) ([]profile.Entry, error) {
	q := s.db.Where("profile_id = ?", profileID).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var entries []profile.Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	for i := range entries {
		if err := unpackEntry(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// PruneEntriesBefore deletes a profile's entries older than the cutoff. This
// is the user-privacy deletion path; nothing in the scoring flow deletes.
func (s *Store) PruneEntriesBefore(profileID string, cutoff time.Time) (int64, error) {
	res := s.db.Where("profile_id = ? AND timestamp < ?", profileID, cutoff).Delete(&profile.Entry{})
	return res.RowsAffected, res.Error
}

// ==================== Queue Methods (BadgerDB) ====================

// Enqueue adds a payload to a named FIFO queue.
func (s *Store) Enqueue(queue string, payload []byte) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		key := fmt.Sprintf("queue:%s:%d", queue, time.Now().UnixNano())
		return txn.Set([]byte(key), payload)
	})
}

// Dequeue retrieves and removes the oldest payload from a queue.
func (s *Store) Dequeue(queue string) ([]byte, error) {
	var payload []byte
	prefix := []byte("queue:" + queue + ":")

	err := s.badger.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		if !it.ValidForPrefix(prefix) {
			return apperrors.ErrQueueEmpty
		}

		item := it.Item()
		key := item.KeyCopy(nil)

		if err := item.Value(func(v []byte) error {
			payload = append([]byte{}, v...)
			return nil
		}); err != nil {
			return err
		}

		return txn.Delete(key)
	})

	return payload, err
}

// QueueLen counts pending payloads in a queue.
func (s *Store) QueueLen(queue string) (int, error) {
	count := 0
	prefix := []byte("queue:" + queue + ":")
	err := s.badger.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// ==================== KV Methods (BadgerDB) ====================

// SetKV stores a key-value pair, optionally with a TTL.
func (s *Store) SetKV(key string, value []byte, ttl time.Duration) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte("kv:"+key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// GetKV retrieves a value by key.
func (s *Store) GetKV(key string) ([]byte, error) {
	var val []byte
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("kv:" + key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	return val, err
}
