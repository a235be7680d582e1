package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "jamsession/internal/jwt_token"
	"jamsession/internal/platform/config"
	"jamsession/pkg/domain"
)

func TestBuildClaims(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	claims := buildClaims("ops@data-jam.com", "", " Acme Corp , ,Globex", "c", time.Hour, now)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, []string{"Acme Corp", "Globex"}, domain.ResourceNames(claims.Projects))
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), claims.ExpiresAt)

	override := buildClaims("ops@data-jam.com", "installer", "", "c", time.Hour, now)
	assert.Equal(t, domain.RoleInstaller, override.Role)
	assert.NotNil(t, override.Projects)
}

func TestDevSecretTokensVerify(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	now := time.Now()
	claims := buildClaims("jane@example.com", "", "Acme Corp", "c", time.Hour, now)

	token, err := jwttoken.Mint(claims, resolveSecret(""))
	require.NoError(t, err)
	_, err = jwttoken.Verify(token, []byte(config.DevSessionSecret), now)
	assert.NoError(t, err)
}
