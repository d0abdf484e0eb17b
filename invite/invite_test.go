package invite

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"convosplit/domain"
)

const (
	testBaseURL  = "https://platform.example/oauth2/authorize"
	testClientID = "123456789"
)

func newTestBuilder(secret string, ttl time.Duration) *Builder {
	return NewBuilder(testBaseURL, testClientID, domain.BotPermissions, []byte(secret), ttl)
}

func TestBuilder_Link_Carries_ClientID_Scope_And_Permissions(t *testing.T) {
	req := require.New(t)
	builder := newTestBuilder("s3cr3t", time.Minute)

	link, err := builder.Link("alice")
	req.NoError(err)

	parsed, err := url.Parse(link)
	req.NoError(err)
	req.Equal("https", parsed.Scheme)
	req.Equal("/oauth2/authorize", parsed.Path)

	query := parsed.Query()
	req.Equal(testClientID, query.Get("client_id"))
	req.Equal("bot", query.Get("scope"))
	req.Equal(strconv.FormatUint(uint64(uint32(domain.BotPermissions)), 10), query.Get("permissions"))
	req.NotEmpty(query.Get("state"))
}

func TestBuilder_State_Roundtrips_The_Requester(t *testing.T) {
	req := require.New(t)
	builder := newTestBuilder("s3cr3t", time.Minute)

	link, err := builder.Link("alice")
	req.NoError(err)
	parsed, err := url.Parse(link)
	req.NoError(err)

	claims, err := builder.ValidateState(parsed.Query().Get("state"))
	req.NoError(err)
	req.Equal("alice", claims.RequesterID)
	req.Equal("convosplit", claims.Issuer)
}

func TestBuilder_Rejects_State_Signed_With_Another_Secret(t *testing.T) {
	req := require.New(t)
	builder := newTestBuilder("s3cr3t", time.Minute)
	forger := newTestBuilder("other-secret", time.Minute)

	link, err := forger.Link("mallory")
	req.NoError(err)
	parsed, err := url.Parse(link)
	req.NoError(err)

	_, err = builder.ValidateState(parsed.Query().Get("state"))
	req.ErrorIs(err, jwt.ErrTokenSignatureInvalid)
}

func TestBuilder_Rejects_Expired_State(t *testing.T) {
	req := require.New(t)
	builder := newTestBuilder("s3cr3t", -time.Minute)

	link, err := builder.Link("alice")
	req.NoError(err)
	parsed, err := url.Parse(link)
	req.NoError(err)

	_, err = builder.ValidateState(parsed.Query().Get("state"))
	req.ErrorIs(err, jwt.ErrTokenExpired)
}

func TestBuilder_Rejects_Garbage_State(t *testing.T) {
	req := require.New(t)
	builder := newTestBuilder("s3cr3t", time.Minute)

	_, err := builder.ValidateState("not-a-token")
	req.Error(err)
}
