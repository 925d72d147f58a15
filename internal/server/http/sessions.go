package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type createSessionRequest struct {
	Name      string   `json:"session_name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type renameSessionRequest struct {
	Name string `json:"session_name"`
}

type joinRequest struct {
	GuestName string `json:"guest_name"`
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	sess, err := h.svc.Sessions.Create(c.Request.Context(), userID(c), req.Name, req.Latitude, req.Longitude)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "session created", gin.H{"session": toSession(*sess), "session_code": sess.Code})
}

func (h *Handler) ownedSessions(c *gin.Context) {
	list, err := h.svc.Sessions.Owned(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"sessions": toSummaries(list)})
}

func (h *Handler) joinedSessions(c *gin.Context) {
	list, err := h.svc.Sessions.Joined(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"sessions": toSummaries(list)})
}

func (h *Handler) sessionHistory(c *gin.Context) {
	list, err := h.svc.Sessions.History(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"sessions": toSummaries(list)})
}

func (h *Handler) sessionInfo(c *gin.Context) {
	sum, err := h.svc.Sessions.Info(c.Request.Context(), c.Param("code"), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"session": toSummary(*sum)})
}

func (h *Handler) renameSession(c *gin.Context) {
	var req renameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	sess, err := h.svc.Sessions.Rename(c.Request.Context(), c.Param("code"), userID(c), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "session renamed", gin.H{"session": toSession(*sess)})
}

func (h *Handler) endSession(c *gin.Context) {
	if err := h.svc.Sessions.End(c.Request.Context(), c.Param("code"), userID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "session ended", nil)
}

// joinSession attaches the caller (user or named guest) and binds the
// resulting roster row to the token.
func (h *Handler) joinSession(c *gin.Context) {
	var req joinRequest
	// The body is optional for signed-in callers.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	uid := userID(c)
	p, result, err := h.svc.Roster.Join(c.Request.Context(), c.Param("code"), identity(uid, req.GuestName))
	if err != nil {
		h.writeError(c, err)
		return
	}
	token, err := h.issue(c, uid, p.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, string(result), gin.H{
		"participant": toParticipant(p),
		"result":      result,
		"token":       token,
	})
}

func (h *Handler) participants(c *gin.Context) {
	sess, list, err := h.svc.Roster.Participants(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{
		"session":      toSession(*sess),
		"is_active":    sess.IsActive,
		"participants": toRoster(list),
	})
}

// joinURL is the page a scanned code opens.
func (h *Handler) joinURL(code string) string {
	return h.baseURL + "/join.html?code=" + url.QueryEscape(code)
}

func (h *Handler) sessionQR(c *gin.Context) {
	sum, err := h.svc.Sessions.Info(c.Request.Context(), c.Param("code"), "")
	if err != nil {
		h.writeError(c, err)
		return
	}
	png, err := qrcode.Encode(h.joinURL(sum.Code), qrcode.Medium, qrSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
