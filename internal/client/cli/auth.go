package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/huntplanur/internal/common"
)

// getSimpleText and getPassword are swapped out in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Register(ctx, userName, email, password)
	if err != nil {
		return err
	}
	a.setUser(u.UserName)
	printlnFn("Registered and logged in as", u.UserName)
	return nil
}

// Login accepts a username or an email.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter username or email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Login(ctx, login, password)
	if err != nil {
		return err
	}
	a.setUser(u.UserName)
	a.setMode(ModeOnline)
	printlnFn("Logged in as", u.UserName)
	return nil
}

// Logout drops the server cookie; the hunt membership goes with it.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.setUser("")
	a.setCode("")
	printlnFn("Logged out")
	return nil
}
