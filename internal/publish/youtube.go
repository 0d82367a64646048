package publish

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/arawak/showroom/internal/config"
)

const (
	watchURLBase      = "https://www.youtube.com/watch"
	categoryHowtoBlog = "22"
	descriptionSuffix = "\n\nFor more interior design ideas, visit our website."
)

var defaultTags = []string{"interior design", "building", "construction", "design ideas", "home decor"}

// WatchURL is the public page for a published video id.
func WatchURL(videoID string) string {
	return watchURLBase + "?v=" + url.QueryEscape(videoID)
}

type YouTube struct {
	svc    *youtube.Service
	creds  config.YouTube
	logger *slog.Logger
}

// NewYouTube builds a client that refreshes its own access tokens from the
// configured refresh token. Extra options are appended after the token
// source, so tests can point the client at a fake endpoint.
func NewYouTube(ctx context.Context, creds config.YouTube, logger *slog.Logger, opts ...option.ClientOption) (*YouTube, error) {
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = slog.Default()
	}
	oc := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})

	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &YouTube{svc: svc, creds: creds, logger: logger}, nil
}

func (y *YouTube) Publish(ctx context.Context, req Request) (*Result, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description + descriptionSuffix,
			Tags:        defaultTags,
			CategoryId:  categoryHowtoBlog,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	resp, err := y.svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube upload: %w", err)
	}
	if resp.Id == "" {
		return nil, fmt.Errorf("youtube upload: empty video id in response")
	}
	y.logger.Info("video published", "youtube_id", resp.Id, "title", req.Title)
	return &Result{VideoID: resp.Id, URL: WatchURL(resp.Id)}, nil
}

func (y *YouTube) Status(ctx context.Context) Status {
	st := credentialStatus(y.creds)
	resp, err := y.svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		st.Error = err.Error()
		return st
	}
	if len(resp.Items) == 0 {
		st.Error = "no channel found for these credentials"
		return st
	}
	st.Connected = true
	if sn := resp.Items[0].Snippet; sn != nil {
		st.Channel = sn.Title
	}
	return st
}

// FromConfig returns a YouTube publisher when credentials are complete and a
// Disabled one otherwise. A client that cannot be built is logged and
// treated as disabled so the server still starts.
func FromConfig(ctx context.Context, creds config.YouTube, logger *slog.Logger) Publisher {
	if !creds.Configured() {
		logger.Info("video publishing disabled", "reason", "youtube credentials missing")
		return Disabled{Credentials: creds}
	}
	yt, err := NewYouTube(ctx, creds, logger)
	if err != nil {
		logger.Warn("video publishing disabled", "error", err)
		return Disabled{Credentials: creds}
	}
	return yt
}
