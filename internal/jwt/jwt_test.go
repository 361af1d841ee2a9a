package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigate-dev/unigate/internal/domain"
)

func TestTokenRoundtrip(t *testing.T) {
	svc := New("test-key", time.Hour)
	user := domain.User{Id: 42, Email: "a@x.edu", Role: domain.RoleAdmin}

	tokenStr, err := svc.NewToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	token, err := svc.DecodeToken(tokenStr)
	require.NoError(t, err)

	claims, ok := token.Claims.(gojwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["uid"])
	assert.Equal(t, "a@x.edu", claims["email"])
	assert.Equal(t, "admin", claims["role"])
}

func TestDecodeToken_WrongKey(t *testing.T) {
	issuer := New("key-one", time.Hour)
	verifier := New("key-two", time.Hour)

	tokenStr, err := issuer.NewToken(domain.User{Id: 1, Email: "a@x.edu", Role: domain.RoleStudent})
	require.NoError(t, err)

	_, err = verifier.DecodeToken(tokenStr)
	assert.Error(t, err)
}

func TestDecodeToken_Expired(t *testing.T) {
	svc := New("test-key", -time.Minute)

	tokenStr, err := svc.NewToken(domain.User{Id: 1, Email: "a@x.edu", Role: domain.RoleStudent})
	require.NoError(t, err)

	_, err = svc.DecodeToken(tokenStr)
	assert.Error(t, err)
}

func TestDecodeToken_Garbage(t *testing.T) {
	svc := New("test-key", time.Hour)

	_, err := svc.DecodeToken("not.a.token")
	assert.Error(t, err)
}
