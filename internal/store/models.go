package store

import "time"

type Design struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Image       string    `db:"image"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type DesignCreate struct {
	Title       string
	Description string
	Image       string
}

// DesignUpdate always replaces the text fields; Image is only replaced when set.
type DesignUpdate struct {
	Title       string
	Description string
	Image       *string
}

type Video struct {
	ID             int64     `db:"id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	VideoFile      string    `db:"video_file"`
	YouTubeURL     *string   `db:"youtube_url"`
	YouTubeVideoID *string   `db:"youtube_video_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type VideoCreate struct {
	Title       string
	Description string
	VideoFile   string
}

type Admin struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password"`
	CreatedAt    time.Time `db:"created_at"`
}
