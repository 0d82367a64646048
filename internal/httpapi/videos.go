package httpapi

import (
	"net/http"
	"time"

	"github.com/arawak/showroom/internal/catalog"
	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/store"
)

type Video struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	VideoFile      string    `json:"video_file"`
	VideoURL       string    `json:"video_url"`
	YouTubeURL     *string   `json:"youtube_url"`
	YouTubeVideoID *string   `json:"youtube_video_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type videoListResponse struct {
	Success bool    `json:"success"`
	Videos  []Video `json:"videos"`
}

type videoResponse struct {
	Success bool  `json:"success"`
	Video   Video `json:"video"`
}

type videoCreatedResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	ID          int64   `json:"id"`
	ExternalURL string  `json:"externalUrl,omitempty"`
	YouTubeURL  *string `json:"youtubeUrl"`
}

func (s *Server) toAPIVideo(v *store.Video) Video {
	return Video{
		ID:             v.ID,
		Title:          v.Title,
		Description:    v.Description,
		VideoFile:      v.VideoFile,
		VideoURL:       s.assets.URLFor(v.VideoFile, media.Videos),
		YouTubeURL:     v.YouTubeURL,
		YouTubeVideoID: v.YouTubeVideoID,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func (s *Server) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.videos.List(r.Context())
	if err != nil {
		s.fail(w, r, err, failure{internal: "Failed to fetch videos"})
		return
	}
	resp := videoListResponse{Success: true, Videos: make([]Video, 0, len(videos))}
	for i := range videos {
		resp.Videos = append(resp.Videos, s.toAPIVideo(&videos[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetVideo(w http.ResponseWriter, r *http.Request, id int64) {
	v, err := s.videos.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, failure{notFound: "Video not found", internal: "Failed to fetch video"})
		return
	}
	writeJSON(w, http.StatusOK, videoResponse{Success: true, Video: s.toAPIVideo(v)})
}

func (s *Server) CreateVideo(w http.ResponseWriter, r *http.Request) {
	form, err := s.readUpload(w, r, "video", media.Videos, s.cfg.MaxVideoBytes)
	if err != nil {
		s.fail(w, r, err, failure{internal: "Failed to upload video"})
		return
	}
	created, err := s.videos.Create(r.Context(), catalog.VideoInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Video:       form.file,
		Publish:     form.flag("publishToExternal", "uploadToYoutube"),
	})
	if err != nil {
		s.fail(w, r, err, failure{internal: "Failed to upload video"})
		return
	}
	resp := videoCreatedResponse{Success: true, Message: "Video uploaded successfully", ID: created.ID, YouTubeURL: created.YouTubeURL}
	if created.YouTubeURL != nil {
		resp.ExternalURL = *created.YouTubeURL
	}
	writeJSON(w, http.StatusCreated, resp)
}

// DeleteVideo never touches the externally published copy.
func (s *Server) DeleteVideo(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.videos.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, failure{notFound: "Video not found", internal: "Failed to delete video"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Video deleted successfully"})
}
