package http

import (
	"strconv"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/services"
	"github.com/gin-gonic/gin"
)

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

func identity(uid, guestName string) models.Identity {
	return models.Identity{UserID: uid, GuestName: guestName}
}

// hoursParam reads ?hours=, defaulting to the standard window.
func hoursParam(c *gin.Context) (int, bool) {
	raw := c.Query("hours")
	if raw == "" {
		return services.DefaultHistoryHours, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "hours must be an integer")
		return 0, false
	}
	return n, true
}

func (h *Handler) me(c *gin.Context) {
	p, err := h.svc.Roster.Me(c.Request.Context(), participantID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"participant": toParticipant(p)})
}

// leave deactivates the row and drops pid from the token.
func (h *Handler) leave(c *gin.Context) {
	if err := h.svc.Roster.Leave(c.Request.Context(), participantID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	token, err := h.issue(c, userID(c), "")
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "left session", gin.H{"token": token})
}

func (h *Handler) recordLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		badRequest(c, "latitude and longitude are required")
		return
	}
	pos, err := h.svc.Presence.Record(c.Request.Context(), participantID(c), *req.Latitude, *req.Longitude, req.Accuracy)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "location updated", gin.H{"location": toPosition(pos)})
}

func (h *Handler) stopSharing(c *gin.Context) {
	if err := h.svc.Presence.StopSharing(c.Request.Context(), participantID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "sharing stopped", nil)
}

func (h *Handler) history(c *gin.Context) {
	hours, valid := hoursParam(c)
	if !valid {
		return
	}
	list, err := h.svc.Presence.History(c.Request.Context(), participantID(c), hours)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"history": toPositions(list), "hours": hours})
}

func (h *Handler) removeParticipant(c *gin.Context) {
	if err := h.svc.Roster.Remove(c.Request.Context(), participantID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "participant removed", nil)
}
