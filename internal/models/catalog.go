package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Service описывает услугу из маркетингового каталога на главной странице.
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	Price       *string   `db:"price" json:"price,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Project описывает работу из портфолио студии.
type Project struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	ImageID      *uuid.UUID     `db:"image_id" json:"image_id,omitempty"`
	Technologies pq.StringArray `db:"technologies" json:"technologies"`
	Link         *string        `db:"link" json:"link,omitempty"`
	GithubURL    *string        `db:"github_url" json:"github_url,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// MediaFile описывает загруженное изображение для проекта портфолио.
type MediaFile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	FilePath  string    `db:"file_path" json:"file_path"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
