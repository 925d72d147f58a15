package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/client/api"
	"github.com/dmitrijs2005/huntplanur/internal/filex"
	"github.com/dmitrijs2005/huntplanur/internal/netx"
)

var (
	errNotInHunt = errors.New("not in a hunt; use join <code> first")
	errUsage     = errors.New("usage")
)

func usage(s string) error { return fmt.Errorf("%w: %s", errUsage, s) }

func (a *App) Create(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("create <name>")
	}
	sess, err := a.api.CreateSession(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	// The owner is on the roster already; joining binds the row to the cookie.
	if _, _, err := a.api.Join(ctx, sess.Code, ""); err != nil {
		return err
	}
	a.setCode(sess.Code)
	printlnFn(fmt.Sprintf("Hunt %q created. Share code %s", sess.Name, sess.Code))
	return nil
}

// Join enters a hunt; a guest must give a display name.
func (a *App) Join(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("join <code> [guest name]")
	}
	guest := strings.Join(args[1:], " ")
	if !a.isLoggedIn() && guest == "" {
		return usage("join <code> <guest name>")
	}
	p, result, err := a.api.Join(ctx, args[0], guest)
	if err != nil {
		return err
	}
	a.setCode(p.SessionCode)
	printlnFn(fmt.Sprintf("%s %s as %s", strings.ReplaceAll(result, "_", " "), p.SessionCode, p.DisplayName))
	return nil
}

// Where reports a position; "where off" stops sharing.
func (a *App) Where(ctx context.Context, args []string) error {
	if a.currentCode() == "" {
		return errNotInHunt
	}
	if len(args) == 1 && args[0] == "off" {
		if err := a.api.StopSharing(ctx); err != nil {
			return err
		}
		printlnFn("Location sharing stopped")
		return nil
	}
	if len(args) < 2 {
		return usage("where <lat> <lon> [accuracy] | where off")
	}
	lat, err1 := strconv.ParseFloat(args[0], 64)
	lon, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		return usage("where <lat> <lon> [accuracy]")
	}
	var acc *float64
	if len(args) > 2 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return usage("accuracy must be a number")
		}
		acc = &v
	}
	if err := a.api.ReportPosition(ctx, lat, lon, acc); err != nil {
		return err
	}
	printlnFn("Location updated")
	return nil
}

func (a *App) Who(ctx context.Context) error {
	code := a.currentCode()
	if code == "" {
		return errNotInHunt
	}
	r, err := a.api.Participants(ctx, code)
	if err != nil {
		return err
	}
	state := "active"
	if !r.IsActive {
		state = "ended"
	}
	printlnFn(fmt.Sprintf("%s (%s), %s", r.Session.Name, code, state))
	for _, e := range r.Participants {
		printlnFn(rosterLine(e))
	}
	return nil
}

func rosterLine(e api.RosterEntry) string {
	var b strings.Builder
	b.WriteString("  " + e.DisplayName)
	if e.IsOwner {
		b.WriteString(" [owner]")
	}
	if e.IsGuest {
		b.WriteString(" [guest]")
	}
	switch {
	case e.Location == nil:
		b.WriteString("  no location")
	case e.IsOnline:
		fmt.Fprintf(&b, "  %.5f, %.5f  online", e.Location.Latitude, e.Location.Longitude)
	default:
		label := "offline"
		if e.LastKnown {
			label = "last known"
		}
		fmt.Fprintf(&b, "  %.5f, %.5f  %s %s", e.Location.Latitude, e.Location.Longitude, label,
			e.Location.RecordedAt.Local().Format(time.DateTime))
	}
	return b.String()
}

func (a *App) Alert(ctx context.Context, args []string) error {
	if a.currentCode() == "" {
		return errNotInHunt
	}
	if err := a.api.SendAlert(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	printlnFn("Alert sent")
	return nil
}

// Alerts shows unread alerts and marks them read.
func (a *App) Alerts(ctx context.Context) error {
	if a.currentCode() == "" {
		return errNotInHunt
	}
	alerts, err := a.api.Alerts(ctx)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		printlnFn("No new alerts")
		return nil
	}
	printAlerts(alerts)
	ids := make([]int64, 0, len(alerts))
	for _, al := range alerts {
		ids = append(ids, al.ID)
	}
	return a.api.MarkRead(ctx, ids)
}

func printAlerts(alerts []api.Alert) {
	for _, al := range alerts {
		line := fmt.Sprintf("! %s %s: %s", al.CreatedAt.Local().Format(time.TimeOnly), al.SenderName, al.Message)
		if al.Latitude != nil && al.Longitude != nil {
			line += fmt.Sprintf(" (at %.5f, %.5f)", *al.Latitude, *al.Longitude)
		}
		printlnFn(line)
	}
}

func (a *App) Leave(ctx context.Context) error {
	if a.currentCode() == "" {
		return errNotInHunt
	}
	if err := a.api.Leave(ctx); err != nil {
		return err
	}
	a.setCode("")
	printlnFn("Left the hunt")
	return nil
}

// End closes the current hunt for everyone; owner only.
func (a *App) End(ctx context.Context) error {
	code := a.currentCode()
	if code == "" {
		return errNotInHunt
	}
	if err := a.api.EndSession(ctx, code); err != nil {
		return err
	}
	a.setCode("")
	printlnFn("Hunt", code, "ended")
	return nil
}

func (a *App) Sessions(ctx context.Context) error {
	list, err := a.api.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No hunts yet")
		return nil
	}
	for _, s := range list {
		state := "active"
		if !s.IsActive {
			state = "ended"
		}
		place := ""
		if s.PlaceName != "" {
			place = " near " + s.PlaceName
		}
		printlnFn(fmt.Sprintf("  %s  %s%s  %s  %d/%d", s.Code, s.Name, place, state, s.ActiveParticipants, s.TotalParticipants))
	}
	return nil
}

// Avatar uploads a local image as the profile picture.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("avatar <image file>")
	}
	data, contentType, err := filex.ReadImage(args[0], filex.MaxAvatarSize)
	if err != nil {
		return err
	}
	url, err := a.api.AvatarUploadURL(ctx)
	if err != nil {
		return err
	}
	if err := netx.UploadToPresignedURL(ctx, url, contentType, data); err != nil {
		return err
	}
	printlnFn("Profile picture updated")
	return nil
}

// Export saves the durable trail: export [csv|xlsx] [hours] [file].
func (a *App) Export(ctx context.Context, args []string) error {
	format, hours := "csv", 24
	if len(args) > 0 {
		format = args[0]
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return usage("export [csv|xlsx] [hours] [file]")
		}
		hours = n
	}
	path := "trail." + format
	if len(args) > 2 {
		path = args[2]
	}

	data, err := a.api.ExportTrail(ctx, format, hours)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Saved %d bytes to %s", len(data), path))
	return nil
}
