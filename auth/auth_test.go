package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer() Issuer {
	return Issuer{
		Secret:   []byte("test-secret"),
		Issuer:   "apex-global-defense",
		Audience: "apex-global-defense-api",
		TTL:      time.Hour,
	}
}

func TestCreateAndVerifyToken(t *testing.T) {
	iss := testIssuer()
	token, err := iss.CreateToken(Subject{ID: "auth|1", Email: "a@apex.test", Name: "Analyst", Role: "analyst"}, time.Now())
	require.NoError(t, err)

	claims, err := iss.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "auth|1", claims.Subject)
	assert.Equal(t, "a@apex.test", claims.Email)
	assert.Equal(t, "analyst", claims.Role)
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	iss := testIssuer()

	expired, err := iss.CreateToken(Subject{ID: "auth|1"}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = iss.VerifyToken(expired)
	assert.Error(t, err)

	other := iss
	other.Secret = []byte("other-secret")
	foreign, err := other.CreateToken(Subject{ID: "auth|1"}, time.Now())
	require.NoError(t, err)
	_, err = iss.VerifyToken(foreign)
	assert.Error(t, err)

	wrongAudience := iss
	wrongAudience.Audience = "someone-else"
	token, err := wrongAudience.CreateToken(Subject{ID: "auth|1"}, time.Now())
	require.NoError(t, err)
	_, err = iss.VerifyToken(token)
	assert.Error(t, err)
}

func TestCreateTokenRequiresSecretAndSubject(t *testing.T) {
	_, err := Issuer{}.CreateToken(Subject{ID: "x"}, time.Now())
	assert.Error(t, err)

	_, err = testIssuer().CreateToken(Subject{}, time.Now())
	assert.Error(t, err)
}
