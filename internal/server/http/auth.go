package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

type profileRequest struct {
	UserName string `json:"username"`
}

// setToken stores the identity token in the HttpOnly cookie.
func (h *Handler) setToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.TokenCookieName, token, int(h.svc.Users.TokenTTL().Seconds()), "/", "", h.secureCookie, true)
}

func (h *Handler) clearToken(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.TokenCookieName, "", -1, "/", "", h.secureCookie, true)
}

// issue signs a token for (uid, pid), sets the cookie and returns the token.
// With neither id the cookie is cleared instead.
func (h *Handler) issue(c *gin.Context, uid, pid string) (string, error) {
	if uid == "" && pid == "" {
		h.clearToken(c)
		return "", nil
	}
	token, err := h.svc.Users.IssueToken(uid, pid)
	if err != nil {
		return "", err
	}
	h.setToken(c, token)
	return token, nil
}

// signedIn finishes a successful login. A session the caller already
// joined stays attached to the new token.
func (h *Handler) signedIn(c *gin.Context, u *models.User, msg string) {
	token, err := h.issue(c, u.ID, participantID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, msg, gin.H{"user": h.user(c, u), "token": token})
}

func (h *Handler) user(c *gin.Context, u *models.User) userJSON {
	url, err := h.svc.Avatars.URL(c.Request.Context(), u.AvatarKey)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "avatar url", "user", u.ID, "error", err)
	}
	return toUser(u, url)
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	u, err := h.svc.Users.Register(c.Request.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.signedIn(c, u, "registered")
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	u, err := h.svc.Users.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.signedIn(c, u, "logged in")
}

func (h *Handler) googleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Credential == "" {
		badRequest(c, "credential is required")
		return
	}
	u, err := h.svc.Users.GoogleLogin(c.Request.Context(), req.Credential)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.signedIn(c, u, "logged in")
}

func (h *Handler) logout(c *gin.Context) {
	h.clearToken(c)
	ok(c, "logged out", nil)
}

// checkAuth reports who the token belongs to. Stale ids are reported as
// absent rather than failing the request.
func (h *Handler) checkAuth(c *gin.Context) {
	ctx := c.Request.Context()
	data := gin.H{"authenticated": false}

	if uid := userID(c); uid != "" {
		if u, err := h.svc.Users.Profile(ctx, uid); err == nil {
			data["authenticated"] = true
			data["user"] = h.user(c, u)
		}
	}
	if pid := participantID(c); pid != "" {
		if p, err := h.svc.Roster.Me(ctx, pid); err == nil && p.IsActive {
			data["participant"] = toParticipant(p)
		}
	}
	ok(c, "", data)
}

func (h *Handler) profile(c *gin.Context) {
	u, err := h.svc.Users.Profile(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"user": h.user(c, u)})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	u, err := h.svc.Users.UpdateUsername(c.Request.Context(), userID(c), req.UserName)
	if errors.Is(err, common.ErrorAlreadyExists) {
		fail(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "profile updated", gin.H{"user": h.user(c, u)})
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	url, err := h.svc.Avatars.BeginUpload(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "", gin.H{"upload_url": url})
}

func (h *Handler) removeAvatar(c *gin.Context) {
	if err := h.svc.Avatars.Remove(c.Request.Context(), userID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, "avatar removed", nil)
}
