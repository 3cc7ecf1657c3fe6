package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yla-umzug/quotes-service/internal/model"
)

func TestParserRoundTrip(t *testing.T) {
	parser := NewParser("secret")
	want := model.Principal{UserID: uuid.New(), Name: "Yusuf", Role: model.UserRoleAdmin}

	token, err := parser.Issue(want, time.Hour)
	require.NoError(t, err)

	got, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParserRejects(t *testing.T) {
	parser := NewParser("secret")
	principal := model.Principal{UserID: uuid.New(), Role: model.UserRoleStaff}

	expired, err := parser.Issue(principal, -time.Minute)
	require.NoError(t, err)

	foreign, err := NewParser("other").Issue(principal, time.Hour)
	require.NoError(t, err)

	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "customer",
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"expired":      expired,
		"wrong secret": foreign,
		"unknown role": unknownRole,
		"bad subject":  badSubject,
		"wrong alg":    hs512,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parser.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
