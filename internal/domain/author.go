package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Author struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Birthday  time.Time `gorm:"not null" json:"birthday"`
	Country   string    `gorm:"size:120;not null" json:"country"`
	Bio       *string   `gorm:"size:2000" json:"bio,omitempty"`
	Books     []Book    `gorm:"foreignKey:AuthorID" json:"books"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Author) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
