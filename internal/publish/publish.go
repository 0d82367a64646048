// Package publish mirrors local videos to an external platform.
package publish

import (
	"context"
	"errors"

	"github.com/arawak/showroom/internal/config"
)

var ErrNotConfigured = errors.New("external publisher not configured")

type Request struct {
	Path        string
	Title       string
	Description string
}

type Result struct {
	VideoID string
	URL     string
}

// Publisher uploads a local file and returns where it can be watched.
type Publisher interface {
	Publish(ctx context.Context, req Request) (*Result, error)
}

// Status describes the publisher credentials and, when they are all
// present, whether the remote account answers.
type Status struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Connected    bool
	Channel      string
	Error        string
}

type StatusReporter interface {
	Status(ctx context.Context) Status
}

// Disabled is used when no credentials are configured.
type Disabled struct {
	Credentials config.YouTube
}

func (Disabled) Publish(context.Context, Request) (*Result, error) {
	return nil, ErrNotConfigured
}

func (d Disabled) Status(context.Context) Status {
	st := credentialStatus(d.Credentials)
	st.Error = ErrNotConfigured.Error()
	return st
}

func credentialStatus(c config.YouTube) Status {
	return Status{
		ClientID:     presence(c.ClientID),
		ClientSecret: presence(c.ClientSecret),
		RefreshToken: presence(c.RefreshToken),
	}
}

// Complete reports whether every credential is present.
func (s Status) Complete() bool {
	return s.ClientID == "Configured" && s.ClientSecret == "Configured" && s.RefreshToken == "Configured"
}

func presence(v string) string {
	if v == "" {
		return "Missing"
	}
	return "Configured"
}
