package entities

import "time"

// Book is the single catalog record. ISBN uniqueness is enforced by the
// unique index, not only by application checks.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:100;not null" json:"title" validate:"required,min=2,max=100"`
	Author    string    `gorm:"index;size:80;not null" json:"author" validate:"required,min=2,max=80"`
	ISBN      string    `gorm:"uniqueIndex;size:17;not null" json:"isbn" validate:"required,isbnformat"`
	Year      int       `gorm:"not null" json:"year" validate:"required,gte=1000,lte=2025"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}
