package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and every /api route. mode is a gin mode;
// empty leaves the current one.
func (h *Handler) NewRouter(mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), instrument(), accessLog(h.logger), h.identify())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")

	api.POST("/register", h.register)
	api.POST("/login", h.login)
	api.POST("/google_login", h.googleLogin)
	api.POST("/logout", h.logout)
	api.GET("/check_auth", h.checkAuth)

	user := api.Group("", requireUser)
	user.GET("/profile", h.profile)
	user.PUT("/profile", h.updateProfile)
	user.POST("/profile/avatar", h.uploadAvatar)
	user.DELETE("/profile/avatar", h.removeAvatar)
	user.POST("/sessions", h.createSession)
	user.GET("/sessions", h.ownedSessions)
	user.GET("/sessions/joined", h.joinedSessions)
	user.GET("/sessions/history", h.sessionHistory)
	user.PATCH("/sessions/:code", h.renameSession)
	user.POST("/sessions/:code/end", h.endSession)
	user.GET("/me/positions", h.myPositions)
	user.GET("/me/positions/export", h.exportPositions)

	api.GET("/sessions/:code", h.sessionInfo)
	api.POST("/sessions/:code/join", h.joinSession)
	api.GET("/sessions/:code/participants", h.participants)
	api.GET("/sessions/:code/qr", h.sessionQR)

	member := api.Group("", requireParticipant)
	member.GET("/participant", h.me)
	member.POST("/participant/leave", h.leave)
	member.POST("/participant/location", h.recordLocation)
	member.POST("/participant/stop_sharing", h.stopSharing)
	member.GET("/participant/history", h.history)
	member.DELETE("/participants/:id", h.removeParticipant)
	member.POST("/alerts", h.sendAlert)
	member.GET("/alerts", h.pollAlerts)
	member.POST("/alerts/read", h.markAlertsRead)

	return r
}
