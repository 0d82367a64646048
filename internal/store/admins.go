package store

import "context"

const adminColumns = "id, username, password, created_at"

func (s *Store) AdminByUsername(ctx context.Context, username string) (*Admin, error) {
	var a Admin
	if err := s.db.GetContext(ctx, &a, "SELECT "+adminColumns+" FROM admin WHERE username = ?", username); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) AdminByID(ctx context.Context, id int64) (*Admin, error) {
	var a Admin
	if err := s.db.GetContext(ctx, &a, "SELECT "+adminColumns+" FROM admin WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// EnsureAdmin inserts the credential unless a row with username exists.
// An existing row is never modified.
func (s *Store) EnsureAdmin(ctx context.Context, username, passwordHash string) (created bool, err error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admin WHERE username = ?", username); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO admin (username, password, created_at) VALUES (?, ?, ?)",
		username, passwordHash, s.timestamp(),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}
