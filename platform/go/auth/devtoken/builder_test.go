package devtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/concoro/concoro-platform/platform/go/auth"
)

func TestBuildRoundTripsThroughUnsignedVerifier(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()

	token, err := Build(Params{
		ProjectID:     "concoro-dev",
		UserID:        "admin-123",
		Email:         "admin@concoro.it",
		Name:          "Dev Admin",
		EmailVerified: true,
		Admin:         true,
	}, now)
	require.NoError(t, err)

	claims, err := auth.UnsignedTokenVerifier()(t.Context(), token)
	require.NoError(t, err)
	require.Equal(t, "https://securetoken.google.com/concoro-dev", claims["iss"])
	require.Equal(t, "concoro-dev", claims["aud"])
	require.Equal(t, float64(now.Unix()), claims["iat"])
	require.Equal(t, float64(now.Add(DefaultTTL).Unix()), claims["exp"])

	principal, err := auth.PrincipalFromClaims(claims)
	require.NoError(t, err)
	require.Equal(t, &auth.Principal{
		UID:           "admin-123",
		Email:         "admin@concoro.it",
		EmailVerified: true,
		Name:          "Dev Admin",
		Admin:         true,
	}, principal)
}

func TestBuildValidatesParams(t *testing.T) {
	_, err := Build(Params{}, time.Time{})
	require.Error(t, err)
	require.ErrorContains(t, err, "projectID is required")
	require.ErrorContains(t, err, "userID is required")
	require.ErrorContains(t, err, "email is required")
}

func TestBuildCustomExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token, err := Build(Params{ProjectID: "p", UserID: "u", Email: "e@x.it", ExpiresIn: 5 * time.Minute}, now)
	require.NoError(t, err)

	claims, err := auth.UnsignedTokenVerifier()(t.Context(), token)
	require.NoError(t, err)
	require.Equal(t, float64(now.Add(5*time.Minute).Unix()), claims["exp"])
	require.Equal(t, false, claims["admin"])
	require.NotContains(t, claims, "name")
}
