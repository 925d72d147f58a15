package common

// TokenCookieName is the HttpOnly cookie carrying the signed identity token.
const TokenCookieName = "hunt_token"

// SessionCodeAlphabet and SessionCodeLength describe join codes.
const (
	SessionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	SessionCodeLength   = 6
)
