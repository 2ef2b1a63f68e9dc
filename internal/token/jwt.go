package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/dtroode/reelscore-server/internal/model"
)

// RefreshTokenBytes is the entropy of a refresh token before hex encoding.
const RefreshTokenBytes = 64

const typeAccess = "access"

// Claims represents access token claims.
type Claims struct {
	jwt.RegisteredClaims
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	TokenType string     `json:"typ"`
}

var _ model.TokenIssuer = (*JWT)(nil)

// JWT issues HMAC-signed access tokens and random opaque refresh tokens.
type JWT struct {
	secretKey []byte
	now       func() time.Time
	random    io.Reader
}

// Option configures JWT.
type Option func(*JWT)

// WithClock overrides the issuance clock.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) { j.now = now }
}

// WithRandom overrides the entropy source used for refresh tokens.
func WithRandom(r io.Reader) Option {
	return func(j *JWT) { j.random = r }
}

// NewJWT creates a token issuer signing with secretKey. An empty secret is a
// misconfiguration and is rejected.
func NewJWT(secretKey string, opts ...Option) (*JWT, error) {
	if secretKey == "" {
		return nil, oops.In("token").Code("TOKEN_SIGNER_MISCONFIGURED").Errorf("jwt secret is empty")
	}

	j := &JWT{
		secretKey: []byte(secretKey),
		now:       time.Now,
		random:    rand.Reader,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// IssueAccess signs {username, role} with a model.AccessTokenTTL expiry.
func (j *JWT) IssueAccess(username string, role model.Role) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(model.AccessTokenTTL)),
		},
		Username:  username,
		Role:      role,
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", oops.In("token").Code("TOKEN_SIGN_FAILED").Wrap(err)
	}

	return tokenString, nil
}

// IssueRefresh returns RefreshTokenBytes random bytes, hex encoded. The value
// carries no identity and is only meaningful through the session store.
func (j *JWT) IssueRefresh() (string, error) {
	buf := make([]byte, RefreshTokenBytes)
	if _, err := io.ReadFull(j.random, buf); err != nil {
		return "", oops.In("token").Code("TOKEN_RANDOM_FAILED").Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// ParseAccess verifies signature and expiry and returns the carried identity.
func (j *JWT) ParseAccess(tokenString string) (model.AccessClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return model.AccessClaims{}, fmt.Errorf("access token is invalid")
	}
	if claims.TokenType != typeAccess {
		return model.AccessClaims{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Username == "" {
		return model.AccessClaims{}, fmt.Errorf("access token has no username")
	}

	return model.AccessClaims{
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
