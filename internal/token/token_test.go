package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)

	signed, exp, err := m.Sign(7, "Asha Shrestha", "asha@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	require.EqualValues(t, 7, claims.UserID)
	require.Equal(t, "Asha Shrestha", claims.FullName)
	require.Equal(t, "asha@example.com", claims.Email)
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager([]byte("test-secret"), -time.Minute)

	signed, _, err := m.Sign(7, "Asha", "asha@example.com")
	require.NoError(t, err)

	_, err = m.Verify(signed)
	require.True(t, errors.Is(err, ErrExpired))
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	other := NewManager([]byte("other-secret"), time.Hour)

	signed, _, err := other.Sign(7, "Asha", "asha@example.com")
	require.NoError(t, err)

	_, err = m.Verify(signed)
	require.True(t, errors.Is(err, ErrInvalid))
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)

	_, err := m.Verify("not.a.token")
	require.True(t, errors.Is(err, ErrInvalid))

	_, err = m.Verify("")
	require.True(t, errors.Is(err, ErrInvalid))
}
