package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenServiceIssueAndVerify(t *testing.T) {
	svc, err := NewTokenService("unit-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.Verify(token))
}

func TestTokenServiceRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	require.Error(t, err)
}

func TestTokenServiceRejectsForeignSecret(t *testing.T) {
	issuer, err := NewTokenService("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue()
	require.NoError(t, err)

	require.Error(t, verifier.Verify(token))
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	svc, err := NewTokenService("unit-secret", time.Hour)
	require.NoError(t, err)
	svc.ttl = -time.Minute

	token, err := svc.Issue()
	require.NoError(t, err)

	require.Error(t, svc.Verify(token))
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc, err := NewTokenService("unit-secret", time.Hour)
	require.NoError(t, err)

	require.Error(t, svc.Verify("not.a.token"))
}
