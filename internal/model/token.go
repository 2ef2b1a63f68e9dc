package model

import "time"

// TokenIssuer creates signed access tokens and opaque refresh tokens.
type TokenIssuer interface {
	IssueAccess(username string, role Role) (string, error)
	IssueRefresh() (string, error)
	ParseAccess(token string) (AccessClaims, error)
}

// AccessClaims is the identity carried by a verified access token.
type AccessClaims struct {
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// TokenPair is returned by every successful register, login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

const (
	// AccessTokenTTL is the lifetime of a signed access token.
	AccessTokenTTL = 30 * time.Minute
	// RefreshTokenTTL is the lifetime of a refresh token row, renewed on rotation.
	RefreshTokenTTL = 30 * 24 * time.Hour
	// VerificationTokenTTL is how long an email verification token can be redeemed.
	VerificationTokenTTL = 24 * time.Hour
)
