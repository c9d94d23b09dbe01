package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestOperatorToken_RoundTrip(t *testing.T) {
	m := NewManager(secret, time.Hour)

	token, err := m.GenerateOperatorToken("auditoria")
	require.NoError(t, err)

	claims, err := m.ValidateOperatorToken(token)
	require.NoError(t, err)
	assert.Equal(t, "auditoria", claims.Subject)
	assert.Equal(t, RoleOperator, claims.Role)
	assert.Equal(t, "acta-generator", claims.Issuer)
	assert.Equal(t, time.Hour, m.GetExpiry())
}

func TestOperatorToken_EmptySubject(t *testing.T) {
	_, err := NewManager(secret, time.Hour).GenerateOperatorToken("")
	require.Error(t, err)
}

func TestValidateOperatorToken_Rejects(t *testing.T) {
	m := NewManager(secret, time.Hour)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key interface{}, claims *Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() *Claims {
		return &Claims{
			Role: RoleOperator,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				Issuer:    "acta-generator",
				Subject:   "auditoria",
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	noExpiry := valid()
	noExpiry.ExpiresAt = nil
	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"
	otherRole := valid()
	otherRole.Role = "viewer"

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: sign(jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), valid())},
		{name: "alg none", token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid())},
		{name: "expired", token: sign(jwt.SigningMethodHS256, []byte(secret), expired)},
		{name: "no expiry", token: sign(jwt.SigningMethodHS256, []byte(secret), noExpiry)},
		{name: "other issuer", token: sign(jwt.SigningMethodHS256, []byte(secret), otherIssuer)},
		{name: "other role", token: sign(jwt.SigningMethodHS256, []byte(secret), otherRole)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateOperatorToken(tt.token)
			require.Error(t, err)
		})
	}
}
