package model

import (
	"time"

	"github.com/google/uuid"
)

// File is a stored blob. Content is kept inline in the database unless
// StorageObjectName is set, in which case the bytes live in cloud storage.
type File struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	OwnerID           uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	FileName          string    `gorm:"type:text" json:"file_name"`
	ContentType       string    `gorm:"type:text" json:"content_type"`
	Extension         string    `gorm:"type:text" json:"extension"`
	Size              int64     `json:"size"`
	Content           []byte    `json:"-"`
	StorageObjectName *string   `gorm:"type:text" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}
