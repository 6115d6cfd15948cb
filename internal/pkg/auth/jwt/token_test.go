package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("u-123", "alice", testSecret, UserIdentityExpiration)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ParseToken(token, testSecret)
	req.NoError(err)
	req.Equal("u-123", claims.ID)
	req.Equal("alice", claims.UserName)
	req.Equal(TokenIssuer, claims.Issuer)
	req.Greater(claims.ExpiresAt, time.Now().Unix())
}

func TestParseToken_WrongSecret(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("u-123", "alice", testSecret, UserIdentityExpiration)
	req.NoError(err)

	_, err = ParseToken(token, "a-different-secret")
	req.Error(err)
}

func TestParseToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("u-123", "alice", testSecret, -time.Minute)
	req.NoError(err)

	_, err = ParseToken(token, testSecret)
	req.Error(err)
}

func TestParseToken_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ParseToken("definitely.not.a-token", testSecret)
	req.Error(err)
}

func TestHMACVerifier(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("u-456", "bob", testSecret, UserIdentityExpiration)
	req.NoError(err)

	var v Verifier = NewHMACVerifier(testSecret)

	claims, err := v.Verify(token)
	req.NoError(err)
	req.Equal("u-456", claims.ID)
	req.Equal("bob", claims.UserName)

	_, err = v.Verify(token + "tampered")
	req.Error(err)
}
