package models

import "time"

// Recognized blob keys. Anything else found in a remote load is ignored.
const (
	KeyTasks       = "tasks"
	KeyStats       = "stats"
	KeyNotes       = "notes"
	KeySubjects    = "subjects"
	KeyChallenges  = "challenges"
	KeyPreferences = "preferences"
	KeyFocus       = "focus"
)

// RecognizedKeys lists every blob the sync layer is allowed to touch.
var RecognizedKeys = []string{
	KeyTasks, KeyStats, KeyNotes, KeySubjects, KeyChallenges, KeyPreferences, KeyFocus,
}

// StoreEntry is one durable (user, key) → JSON row. The unique index on
// (user_id, key) is what upserts target.
type StoreEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"index:idx_store_user_key,unique;not null" json:"user_id"`
	Key       string    `gorm:"index:idx_store_user_key,unique;not null" json:"key"`
	Value     string    `gorm:"type:jsonb" json:"value"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
