package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/arawak/showroom/internal/auth"
	"github.com/arawak/showroom/internal/catalog"
	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/store"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// failure names the messages a handler uses for the two cases that depend
// on the route: a missing record and an unexpected error.
type failure struct {
	notFound string
	internal string
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, f failure) {
	status, msg := s.classify(err, f)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, msg)
}

func (s *Server) classify(err error, f failure) (int, string) {
	var verr *catalog.ValidationError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, errBadRequest), errors.Is(err, catalog.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, media.ErrWrongType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, media.ErrInvalidImage):
		return http.StatusBadRequest, "Uploaded file is not a valid image"
	case errors.Is(err, media.ErrTooLarge), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %s for images, %s for videos.",
			humanBytes(s.cfg.MaxImageBytes), humanBytes(s.cfg.MaxVideoBytes))
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Access token required"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusForbidden, "Invalid token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, store.ErrNotFound) && f.notFound != "":
		return http.StatusNotFound, f.notFound
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Not found"
	}
	if f.internal == "" {
		return http.StatusInternalServerError, "Internal server error"
	}
	return http.StatusInternalServerError, f.internal
}

func humanBytes(n int64) string {
	const mib = 1 << 20
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	if n >= mib {
		return fmt.Sprintf("%.1fMB", float64(n)/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
