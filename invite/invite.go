// Package invite builds the bot authorization link. The command is
// stateless: it never touches the session registry.
package invite

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"convosplit/domain"
)

// Builder assembles authorization URLs carrying a short-lived signed
// state token, so the redirect back from the platform can be tied to
// the member who asked for the link.
type Builder struct {
	baseURL     string
	clientID    string
	permissions domain.Permission
	secret      []byte
	stateTTL    time.Duration
}

// StateClaims is the payload stored inside the state token.
type StateClaims struct {
	RequesterID string `json:"requester_id"`
	jwt.RegisteredClaims
}

func NewBuilder(baseURL, clientID string, permissions domain.Permission,
	secret []byte, stateTTL time.Duration) *Builder {
	return &Builder{
		baseURL:     baseURL,
		clientID:    clientID,
		permissions: permissions,
		secret:      secret,
		stateTTL:    stateTTL,
	}
}

// Link returns the authorization URL for the requesting member.
func (b *Builder) Link(requester domain.UserID) (string, error) {
	state, err := b.signState(requester)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("client_id", b.clientID)
	query.Set("scope", "bot")
	query.Set("permissions", fmt.Sprintf("%d", uint32(b.permissions)))
	query.Set("state", state)
	return b.baseURL + "?" + query.Encode(), nil
}

// signState creates a signed JWT identifying who requested the link.
func (b *Builder) signState(requester domain.UserID) (string, error) {
	now := time.Now()
	claims := &StateClaims{
		RequesterID: string(requester),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(b.stateTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "convosplit",
		},
	}

	// HS256: HMAC with SHA256, symmetric secret held by the bot only.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(b.secret)
}

// ValidateState parses and validates the signature and expiration of a
// state token coming back from the authorization redirect.
func (b *Builder) ValidateState(tokenString string) (*StateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		return b.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
