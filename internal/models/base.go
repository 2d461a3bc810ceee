package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for all entities.
// ID is a free-form string so migrated documents can keep ids derived from
// their source ("support-123"); rows created without one get a UUID.
type Base struct {
	ID        string    `json:"_id"        gorm:"type:varchar(64);primaryKey" bson:"_id"`
	CreatedAt time.Time `json:"_createdAt" bson:"_createdAt"`
	UpdatedAt time.Time `json:"_updatedAt" bson:"_updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
