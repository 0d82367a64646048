package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arawak/showroom/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("access token required")
	ErrInvalidToken       = errors.New("invalid token")
)

// CredentialStore is the read side of the admin table.
type CredentialStore interface {
	AdminByUsername(ctx context.Context, username string) (*store.Admin, error)
	AdminByID(ctx context.Context, id int64) (*store.Admin, error)
}

// Claims is the verified payload of a session token.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string
	Claims    *Claims
	ExpiresAt time.Time
}

type Authenticator struct {
	creds  CredentialStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(creds CredentialStore, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{creds: creds, secret: []byte(secret), ttl: ttl, now: time.Now}
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// burnCompare spends the same bcrypt work as a real comparison so unknown
// usernames cannot be told apart by response time.
func burnCompare(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("showroom-timing-equalizer")
	})
	_ = CheckPassword(dummyHash, password)
}

func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	admin, err := a.creds.AdminByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		burnCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if !CheckPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a.Issue(admin)
}

// Issue signs a token for admin that expires after the configured TTL.
func (a *Authenticator) Issue(admin *store.Admin) (*Session, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := &Claims{
		ID:       admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(admin.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: signed, Claims: claims, ExpiresAt: expires}, nil
}

// Verify checks signature and expiry only; it does not consult the store.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize verifies the bearer token in an Authorization header value and
// requires the admin it names to still exist.
func (a *Authenticator) Authorize(ctx context.Context, header string) (*Claims, error) {
	claims, err := a.Verify(BearerToken(header))
	if err != nil {
		return nil, err
	}
	if _, err := a.creds.AdminByID(ctx, claims.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: admin %d no longer exists", ErrInvalidToken, claims.ID)
		}
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	return claims, nil
}

func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
