// Package catalog coordinates catalog records with the asset files they
// reference. A record write always happens before the asset it replaces or
// releases is removed, so a failure can leave an orphaned file but never a
// record pointing at a missing one.
package catalog

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/arawak/showroom/internal/media"
)

var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Assets is the part of the asset store the services need after an upload
// has been staged.
type Assets interface {
	Remove(name string, c media.Category) error
	Path(name string, c media.Category) (string, error)
}

func requireText(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return "", "", invalid("Title and description are required")
	}
	return title, description, nil
}

// removeAsset is best effort: the record operation it follows has already
// succeeded, so a failure here is only logged.
func removeAsset(logger *slog.Logger, assets Assets, name string, c media.Category, reason string) {
	if name == "" {
		return
	}
	if err := assets.Remove(name, c); err != nil {
		logger.Warn("asset cleanup failed", "file", name, "category", string(c), "reason", reason, "error", err)
		return
	}
	logger.Debug("asset removed", "file", name, "category", string(c), "reason", reason)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
