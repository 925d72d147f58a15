package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/server/export"
	"github.com/gin-gonic/gin"
)

func (h *Handler) myPositions(c *gin.Context) {
	hours, valid := hoursParam(c)
	if !valid {
		return
	}
	list, err := h.svc.Presence.UserTrail(c.Request.Context(), userID(c), hours)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"positions": toPositions(list), "hours": hours})
}

// exportPositions streams the durable trail as a CSV or XLSX attachment.
func (h *Handler) exportPositions(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", export.FormatCSV))
	contentType, known := export.ContentType(format)
	if !known {
		badRequest(c, "format must be csv or xlsx")
		return
	}
	hours, valid := hoursParam(c)
	if !valid {
		return
	}
	list, err := h.svc.Presence.UserTrail(c.Request.Context(), userID(c), hours)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(format, time.Now())+`"`)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, list); err != nil {
		h.logger.Error(c.Request.Context(), "trail export failed", "user", userID(c), "error", err)
	}
}
