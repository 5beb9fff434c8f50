package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParseRoundtrip(t *testing.T) {
	m := NewManager("test-secret-at-least-16-bytes", 3600, "go-sysadmin")

	token, err := m.Generate(42, []int64{1, 3}, "jti-abc")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, []int64{1, 3}, claims.Roles)
	assert.Equal(t, "jti-abc", claims.JTI)
	assert.Equal(t, "go-sysadmin", claims.Issuer)
	assert.Equal(t, time.Hour, m.ExpireDuration())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := NewManager("test-secret-at-least-16-bytes", 3600, "go-sysadmin")
	token, err := m.Generate(1, nil, "jti-x")
	require.NoError(t, err)

	other := NewManager("another-secret-also-16-bytes!", 3600, "go-sysadmin")
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("test-secret-at-least-16-bytes", -1, "go-sysadmin")
	token, err := m.Generate(1, nil, "jti-x")
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret-at-least-16-bytes", 3600, "go-sysadmin")
	_, err := m.Parse("not.a.jwt")
	assert.Error(t, err)
}
