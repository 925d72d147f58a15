package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) Register(ctx context.Context, userName, email string, password []byte) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/register", map[string]string{
		"username": userName, "email": email, "password": string(password),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, login string, password []byte) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"login": login, "password": string(password),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *Client) WhoAmI(ctx context.Context) (*Identity, error) {
	var out Identity
	if err := c.do(ctx, http.MethodGet, "/api/check_auth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSession(ctx context.Context, name string) (*Session, error) {
	var out struct {
		Session Session `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"session_name": name}, &out); err != nil {
		return nil, err
	}
	return &out.Session, nil
}

func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	var out struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/sessions/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

func (c *Client) EndSession(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(code)+"/end", nil, nil)
}

// Join enters a session; guestName is ignored by the server for a
// logged-in caller. The second result is joined, rejoined or already_joined.
func (c *Client) Join(ctx context.Context, code, guestName string) (*Participant, string, error) {
	var out struct {
		Participant Participant `json:"participant"`
		Result      string      `json:"result"`
	}
	var body any
	if guestName != "" {
		body = map[string]string{"guest_name": guestName}
	}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(code)+"/join", body, &out); err != nil {
		return nil, "", err
	}
	return &out.Participant, out.Result, nil
}

func (c *Client) Participants(ctx context.Context, code string) (*Roster, error) {
	var out Roster
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(code)+"/participants", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Leave(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/participant/leave", nil, nil)
}

func (c *Client) ReportPosition(ctx context.Context, lat, lon float64, accuracy *float64) error {
	body := map[string]any{"latitude": lat, "longitude": lon}
	if accuracy != nil {
		body["accuracy"] = *accuracy
	}
	return c.do(ctx, http.MethodPost, "/api/participant/location", body, nil)
}

func (c *Client) StopSharing(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/participant/stop_sharing", nil, nil)
}

func (c *Client) SendAlert(ctx context.Context, message string) error {
	return c.do(ctx, http.MethodPost, "/api/alerts", map[string]string{"message": message}, nil)
}

func (c *Client) Alerts(ctx context.Context) ([]Alert, error) {
	var out struct {
		Alerts []Alert `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out.Alerts, nil
}

func (c *Client) MarkRead(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/alerts/read", map[string]any{"notification_ids": ids}, nil)
}

// AvatarUploadURL asks for a presigned PUT for a new profile picture.
func (c *Client) AvatarUploadURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"upload_url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/profile/avatar", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// ExportTrail downloads the caller's durable trail as csv or xlsx.
func (c *Client) ExportTrail(ctx context.Context, format string, hours int) ([]byte, error) {
	q := url.Values{"format": {format}, "hours": {strconv.Itoa(hours)}}
	data, _, err := c.download(ctx, "/api/me/positions/export?"+q.Encode())
	return data, err
}
