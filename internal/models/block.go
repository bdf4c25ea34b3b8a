package models

import "time"

// Block represents a directed block edge between two users.
// A block hides both users' content from each other and severs any follow
// edges between them at creation time.
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_block_pair" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_block_pair;index" json:"blocked_id"`
	Reason    string    `gorm:"type:text;default:''" json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Blocker User `gorm:"foreignKey:BlockerID" json:"blocker,omitempty"`
	Blocked User `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
}

// TableName specifies the table name for GORM
func (Block) TableName() string {
	return "blocks"
}
