package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() models.JWTClaims {
	return models.JWTClaims{
		UserID:   "user-1",
		Role:     models.RoleInspector,
		FullName: "Claire Martin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "fleet-idp",
			Audience:  jwt.ClaimStrings{"vgp-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "fleet-idp", Audience: []string{"vgp-api"}})

	claims, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleInspector, claims.Role)
	assert.Equal(t, "Claire Martin", claims.DisplayName())
}

func TestTokenServiceRejectsInvalidTokens(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "fleet-idp", Audience: []string{"vgp-api"}})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	anonymous := validClaims()
	anonymous.UserID = ""

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"wrong alg":    signToken(t, jwt.SigningMethodHS512, []byte("s3cret"), validClaims()),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), expired),
		"wrong issuer": signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), wrongIssuer),
		"no user":      signToken(t, jwt.SigningMethodHS256, []byte("s3cret"), anonymous),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}
