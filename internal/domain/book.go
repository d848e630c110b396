package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:255;not null;index" json:"title"`
	ISBN        string     `gorm:"column:isbn;size:32;not null" json:"isbn"`
	CoverURL    *string    `gorm:"size:1024" json:"coverUrl,omitempty"`
	CoverKey    string     `gorm:"size:255" json:"-"`
	Published   time.Time  `gorm:"not null" json:"published"`
	Publisher   string     `gorm:"size:255;not null" json:"publisher"`
	Pages       int        `gorm:"not null" json:"pages"`
	Language    string     `gorm:"size:64;not null" json:"language"`
	Genres      StringList `gorm:"type:text" json:"genres"`
	Description *string    `gorm:"size:4000" json:"description,omitempty"`
	AuthorID    string     `gorm:"size:36;not null;index" json:"authorId"`
	Author      *Author    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// StringList is persisted as a JSON array so it works on both postgres and sqlite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = out
	return nil
}
