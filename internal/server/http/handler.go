// Package http exposes the hunt services as a JSON API over gin.
package http

import (
	"strings"

	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/services"
)

// Services is everything the handlers call into.
type Services struct {
	Users    *services.UserService
	Sessions *services.SessionService
	Roster   *services.RosterService
	Presence *services.PresenceService
	Alerts   *services.AlertService
	Avatars  *services.AvatarService
}

type Handler struct {
	svc     Services
	baseURL string
	logger  logging.Logger

	// secureCookie marks the identity cookie Secure; set when the public
	// URL is https.
	secureCookie bool
}

func NewHandler(svc Services, publicBaseURL string, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop{}
	}
	return &Handler{
		svc:          svc,
		baseURL:      publicBaseURL,
		logger:       log.With("module", "http"),
		secureCookie: strings.HasPrefix(publicBaseURL, "https://"),
	}
}
