package models

import "time"

// SlugField mirrors the CMS slug object ({"current": "..."}).
type SlugField struct {
	Current string `json:"current" gorm:"column:current;index;size:191" bson:"current"`
}

// DocumentModel is a migrated content document (support article, legal page, ...).
// It is replaced as a whole on every migration run.
type DocumentModel struct {
	Base        `bson:",inline"`
	Type        string      `json:"_type"                 gorm:"column:doc_type;index;not null" bson:"_type"`
	Locale      string      `json:"locale"                gorm:"index;size:16"                  bson:"locale"`
	Slug        SlugField   `json:"slug"                  gorm:"embedded;embeddedPrefix:slug_"  bson:"slug"`
	Title       string      `json:"title"                 gorm:"not null"                       bson:"title"`
	Content     []Block     `json:"content"               gorm:"type:longtext;serializer:json"  bson:"content"`
	Tags        StringArray `json:"tags,omitempty"        gorm:"type:longtext"                  bson:"tags,omitempty"`
	PublishedAt *time.Time  `json:"publishedAt,omitempty" gorm:"index"                          bson:"publishedAt,omitempty"`
}

func (DocumentModel) TableName() string { return "documents" }
