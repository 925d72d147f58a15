package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

type alertRequest struct {
	Message string `json:"message"`
}

// Ids are decoded one by one so a malformed entry is skipped instead of
// failing the batch.
type markReadRequest struct {
	IDs []json.RawMessage `json:"notification_ids"`
}

func (r markReadRequest) ids() []int64 {
	out := make([]int64, 0, len(r.IDs))
	for _, raw := range r.IDs {
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (h *Handler) sendAlert(c *gin.Context) {
	var req alertRequest
	// An empty body sends the default message.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	n, err := h.svc.Alerts.Send(c.Request.Context(), participantID(c), req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "alert sent", gin.H{"alert": toAlert(n)})
}

func (h *Handler) pollAlerts(c *gin.Context) {
	list, err := h.svc.Alerts.PollUnread(c.Request.Context(), participantID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"alerts": toAlerts(list)})
}

func (h *Handler) markAlertsRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	n, err := h.svc.Alerts.MarkRead(c.Request.Context(), participantID(c), req.ids())
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"marked": n})
}
