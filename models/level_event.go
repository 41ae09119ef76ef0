package models

import "time"

// LevelUpEvent records a level boundary crossing so the presentation
// layer can celebrate it. Written by the progression service, consumed
// by the SSE stream; it never feeds back into XP application.
type LevelUpEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Level     int       `gorm:"not null" json:"level"`
	Source    string    `gorm:"type:varchar(32)" json:"source"` // e.g. "task", "challenge"
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
