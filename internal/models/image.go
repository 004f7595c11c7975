package models

import "time"

// Image is the metadata row of a content-addressed uploaded image
type Image struct {
	ID               uint      `gorm:"primarykey" json:"-"`
	URI              string    `gorm:"size:64;not null;uniqueIndex:idx_images_uri" json:"uri"`
	Filename         string    `gorm:"size:128;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:255" json:"original_filename"`
	Size             int64     `json:"size"`
	ContentType      string    `gorm:"size:32" json:"content_type"`
	URL              string    `gorm:"size:255" json:"url"`
	FilePath         string    `gorm:"size:255" json:"-"`
	Hash             string    `gorm:"size:32;index" json:"hash"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (Image) TableName() string {
	return "images"
}
