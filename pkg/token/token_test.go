package token

import (
	"testing"
	"time"

	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	raw, err := m.Issue(7, "alice", "admin")
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestParse_Expired(t *testing.T) {
	m := NewManager("secret", -time.Minute)

	raw, err := m.Issue(7, "alice", "regular")
	require.NoError(t, err)

	_, err = m.Parse(raw)
	require.ErrorIs(t, err, e.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	raw, err := NewManager("secret-a", time.Hour).Issue(7, "alice", "regular")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(raw)
	require.ErrorIs(t, err, e.ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	m := NewManager("secret", time.Hour)

	_, err := m.Parse("not-a-token")
	require.ErrorIs(t, err, e.ErrInvalidToken)
}
