package services

import (
	"encoding/json"
	"fmt"
	"log"

	"studysync-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobStore is the durable key→JSON capability every state container is
// built on. Load reports found=false when the key has never been written;
// decode and read failures are returned so callers can fall back to
// defaults instead of trusting a broken blob.
type BlobStore interface {
	Load(userID, key string, out any) (found bool, err error)
	Save(userID, key string, v any) error
	Delete(userID, key string) error
	Raw(userID, key string) (string, bool, error)
}

// ChangeObserver is notified after every successful local save. The sync
// coordinator hangs off this to schedule debounced upstream pushes.
type ChangeObserver interface {
	StateChanged(userID, key string)
}

// GormStore persists blobs to the store_entries table. Writes are
// synchronous; the observer only ever sees committed state.
type GormStore struct {
	DB       *gorm.DB
	observer ChangeObserver
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Watch attaches the single change observer. Must be called before the
// store is shared; there is no locking around the field.
func (s *GormStore) Watch(o ChangeObserver) {
	s.observer = o
}

func (s *GormStore) Load(userID, key string, out any) (bool, error) {
	var entry models.StoreEntry
	err := s.DB.Where("user_id = ? AND key = ?", userID, key).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s/%s: %w", userID, key, err)
	}
	if err := json.Unmarshal([]byte(entry.Value), out); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", userID, key, err)
	}
	return true, nil
}

func (s *GormStore) Save(userID, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", userID, key, err)
	}

	entry := models.StoreEntry{UserID: userID, Key: key, Value: string(payload)}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("save %s/%s: %w", userID, key, err)
	}

	if s.observer != nil {
		s.observer.StateChanged(userID, key)
	}
	return nil
}

func (s *GormStore) Delete(userID, key string) error {
	if err := s.DB.Where("user_id = ? AND key = ?", userID, key).
		Delete(&models.StoreEntry{}).Error; err != nil {
		return fmt.Errorf("delete %s/%s: %w", userID, key, err)
	}
	return nil
}

// SaveRaw stores pre-encoded JSON without re-marshalling it. The sync
// coordinator uses it when a remote load overwrites local state; the
// observer still fires so per-key watchers stay consistent.
func (s *GormStore) SaveRaw(userID, key, value string) error {
	entry := models.StoreEntry{UserID: userID, Key: key, Value: value}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("save %s/%s: %w", userID, key, err)
	}
	if s.observer != nil {
		s.observer.StateChanged(userID, key)
	}
	return nil
}

// Raw returns the stored JSON text untouched. Used by the export bundler
// and the sync coordinator, which push values as-is.
func (s *GormStore) Raw(userID, key string) (string, bool, error) {
	var entry models.StoreEntry
	err := s.DB.Where("user_id = ? AND key = ?", userID, key).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// loadOr decodes the blob at key into out and falls back to applying
// def when the key is missing or the blob is unreadable. Storage-read
// and parse failures never reach the caller as errors.
func loadOr(store BlobStore, userID, key string, out any, def func()) {
	found, err := store.Load(userID, key, out)
	if err != nil {
		log.Printf("⚠️ [STORE] falling back to defaults for %s/%s: %v", userID, key, err)
		def()
		return
	}
	if !found {
		def()
	}
}
