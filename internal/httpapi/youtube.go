package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/arawak/showroom/internal/publish"
)

const statusCheckTimeout = 10 * time.Second

type youtubeStatus struct {
	ClientID     string  `json:"clientId"`
	ClientSecret string  `json:"clientSecret"`
	RefreshToken string  `json:"refreshToken"`
	Connection   string  `json:"connection"`
	Channel      *string `json:"channel"`
}

type youtubeStatusResponse struct {
	Success bool          `json:"success"`
	Status  youtubeStatus `json:"status"`
}

func (s *Server) GetYouTubeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statusCheckTimeout)
	defer cancel()

	reporter, ok := s.publisher.(publish.StatusReporter)
	if !ok {
		reporter = publish.Disabled{Credentials: s.cfg.YouTube}
	}
	st := reporter.Status(ctx)

	out := youtubeStatus{
		ClientID:     st.ClientID,
		ClientSecret: st.ClientSecret,
		RefreshToken: st.RefreshToken,
		Connection:   "Not configured",
	}
	switch {
	case st.Connected:
		out.Connection = "Connected"
		channel := st.Channel
		out.Channel = &channel
	case st.Complete() && st.Error != "":
		out.Connection = "Error: " + st.Error
	}
	writeJSON(w, http.StatusOK, youtubeStatusResponse{Success: true, Status: out})
}
