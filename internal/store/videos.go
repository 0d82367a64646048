package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const videoColumns = "id, title, description, video_file, youtube_url, youtube_video_id, created_at, updated_at"

func (s *Store) ListVideos(ctx context.Context) ([]Video, error) {
	videos := []Video{}
	err := s.db.SelectContext(ctx, &videos, "SELECT "+videoColumns+" FROM videos ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *Store) GetVideo(ctx context.Context, id int64) (*Video, error) {
	return s.fetchVideo(ctx, nil, id)
}

func (s *Store) fetchVideo(ctx context.Context, tx *sqlx.Tx, id int64) (*Video, error) {
	query := "SELECT " + videoColumns + " FROM videos WHERE id = ?"
	var v Video
	var err error
	if tx != nil {
		err = tx.GetContext(ctx, &v, query, id)
	} else {
		err = s.db.GetContext(ctx, &v, query, id)
	}
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *Store) CreateVideo(ctx context.Context, in VideoCreate) (*Video, error) {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO videos (title, description, video_file, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		in.Title, in.Description, in.VideoFile, now, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Video{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		VideoFile:   in.VideoFile,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetVideoExternal records where the video was mirrored.
func (s *Store) SetVideoExternal(ctx context.Context, id int64, url, externalID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE videos SET youtube_url = ?, youtube_video_id = ?, updated_at = ? WHERE id = ?",
		url, externalID, s.timestamp(), id,
	)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteVideo(ctx context.Context, id int64) (*Video, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	v, err := s.fetchVideo(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return v, nil
}
