package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/publish"
	"github.com/arawak/showroom/internal/store"
)

const defaultPublishTimeout = 10 * time.Minute

type VideoStore interface {
	ListVideos(ctx context.Context) ([]store.Video, error)
	GetVideo(ctx context.Context, id int64) (*store.Video, error)
	CreateVideo(ctx context.Context, in store.VideoCreate) (*store.Video, error)
	SetVideoExternal(ctx context.Context, id int64, url, externalID string) error
	DeleteVideo(ctx context.Context, id int64) (*store.Video, error)
}

type VideoInput struct {
	Title       string
	Description string
	Video       *media.Upload
	Publish     bool
}

type Videos struct {
	store     VideoStore
	assets    Assets
	publisher publish.Publisher
	timeout   time.Duration
	logger    *slog.Logger
}

func NewVideos(st VideoStore, assets Assets, publisher publish.Publisher, timeout time.Duration, logger *slog.Logger) *Videos {
	if publisher == nil {
		publisher = publish.Disabled{}
	}
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Videos{store: st, assets: assets, publisher: publisher, timeout: timeout, logger: orDefault(logger)}
}

func (v *Videos) List(ctx context.Context) ([]store.Video, error) {
	return v.store.ListVideos(ctx)
}

func (v *Videos) Get(ctx context.Context, id int64) (*store.Video, error) {
	return v.store.GetVideo(ctx, id)
}

// Create stores the video locally and then, if asked, mirrors it to the
// external publisher. The local record is returned whatever the publisher
// does; the external fields are set only when publishing succeeded.
func (v *Videos) Create(ctx context.Context, in VideoInput) (*store.Video, error) {
	defer in.Video.Discard()

	title, description, err := requireText(in.Title, in.Description)
	if err != nil {
		return nil, err
	}
	if in.Video == nil {
		return nil, invalid("Video file is required")
	}

	name, err := in.Video.Commit()
	if err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}
	created, err := v.store.CreateVideo(ctx, store.VideoCreate{Title: title, Description: description, VideoFile: name})
	if err != nil {
		removeAsset(v.logger, v.assets, name, media.Videos, "video insert failed")
		return nil, err
	}
	v.logger.Info("video created", "id", created.ID, "file", name)

	if in.Publish {
		v.publish(ctx, created)
	}
	return created, nil
}

func (v *Videos) publish(ctx context.Context, video *store.Video) {
	log := v.logger.With("id", video.ID, "file", video.VideoFile)
	path, err := v.assets.Path(video.VideoFile, media.Videos)
	if err != nil {
		log.Warn("publish skipped", "error", err)
		return
	}

	// The mirror is not tied to the client connection, only to the timeout.
	base := context.WithoutCancel(ctx)
	pctx, cancel := context.WithTimeout(base, v.timeout)
	defer cancel()

	started := time.Now()
	res, err := v.publisher.Publish(pctx, publish.Request{Path: path, Title: video.Title, Description: video.Description})
	if errors.Is(err, publish.ErrNotConfigured) {
		log.Info("publish skipped", "reason", err.Error())
		return
	}
	if err != nil {
		log.Warn("publish failed", "error", err, "elapsed", time.Since(started))
		return
	}

	if err := v.store.SetVideoExternal(base, video.ID, res.URL, res.VideoID); err != nil {
		log.Warn("recording external url failed", "url", res.URL, "error", err)
		return
	}
	video.YouTubeURL = &res.URL
	video.YouTubeVideoID = &res.VideoID
	log.Info("video mirrored", "url", res.URL, "elapsed", time.Since(started))
}

// Delete removes the record and then the local file. The external copy is
// left alone.
func (v *Videos) Delete(ctx context.Context, id int64) error {
	deleted, err := v.store.DeleteVideo(ctx, id)
	if err != nil {
		return err
	}
	removeAsset(v.logger, v.assets, deleted.VideoFile, media.Videos, "video deleted")
	v.logger.Info("video deleted", "id", id)
	return nil
}
