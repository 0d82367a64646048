package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/arawak/showroom/internal/auth"
)

type principalKeyType struct{}

var principalKey = principalKeyType{}

const maxLoginBody = 16 << 10

func WithPrincipal(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, principalKey, c)
}

func PrincipalFromContext(ctx context.Context) (*auth.Claims, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(principalKey).(*auth.Claims)
	return c, ok && c != nil
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.Authorize(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			s.fail(w, r, err, failure{internal: "Authentication failed"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims)))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody)).Decode(&payload); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}
	sess, err := s.auth.Login(r.Context(), username, payload.Password)
	if err != nil {
		s.fail(w, r, err, failure{internal: "Login failed"})
		return
	}
	s.logger.Info("admin logged in", "admin_id", sess.Claims.ID)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: "Login successful", Token: sess.Token})
}

type verifyResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *auth.Claims `json:"user"`
}

func (s *Server) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	claims, _ := PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, verifyResponse{Success: true, Message: "Token is valid", User: claims})
}
