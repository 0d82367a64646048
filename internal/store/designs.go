package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const designColumns = "id, title, description, image, created_at, updated_at"

func (s *Store) ListDesigns(ctx context.Context) ([]Design, error) {
	designs := []Design{}
	err := s.db.SelectContext(ctx, &designs, "SELECT "+designColumns+" FROM designs ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	return designs, nil
}

func (s *Store) GetDesign(ctx context.Context, id int64) (*Design, error) {
	return s.fetchDesign(ctx, nil, id)
}

func (s *Store) fetchDesign(ctx context.Context, tx *sqlx.Tx, id int64) (*Design, error) {
	query := "SELECT " + designColumns + " FROM designs WHERE id = ?"
	var d Design
	var err error
	if tx != nil {
		err = tx.GetContext(ctx, &d, query, id)
	} else {
		err = s.db.GetContext(ctx, &d, query, id)
	}
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *Store) CreateDesign(ctx context.Context, in DesignCreate) (*Design, error) {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO designs (title, description, image, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		in.Title, in.Description, in.Image, now, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Design{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateDesign applies upd and returns the updated row together with the
// image it referenced before the update. previousImage is empty when the
// image did not change. The caller owns cleanup of previousImage, which must
// only happen after this call returns without error.
func (s *Store) UpdateDesign(ctx context.Context, id int64, upd DesignUpdate) (updated *Design, previousImage string, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	current, err := s.fetchDesign(ctx, tx, id)
	if err != nil {
		return nil, "", err
	}

	now := s.timestamp()
	if upd.Image != nil {
		_, err = tx.ExecContext(ctx,
			"UPDATE designs SET title = ?, description = ?, image = ?, updated_at = ? WHERE id = ?",
			upd.Title, upd.Description, *upd.Image, now, id,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE designs SET title = ?, description = ?, updated_at = ? WHERE id = ?",
			upd.Title, upd.Description, now, id,
		)
	}
	if err != nil {
		return nil, "", err
	}

	updated = &Design{
		ID:          id,
		Title:       upd.Title,
		Description: upd.Description,
		Image:       current.Image,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   now,
	}
	if upd.Image != nil && *upd.Image != current.Image {
		updated.Image = *upd.Image
		previousImage = current.Image
	}

	if err := tx.Commit(); err != nil {
		return nil, "", err
	}
	return updated, previousImage, nil
}

// DeleteDesign removes the row and returns it so the caller can clean up
// its image.
func (s *Store) DeleteDesign(ctx context.Context, id int64) (*Design, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	d, err := s.fetchDesign(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM designs WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return d, nil
}
