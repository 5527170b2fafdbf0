package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) JWTMgr {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return NewJWTManager(privateKey, publicKey)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	jwtManager := newTestManager(t)

	claims := jwtManager.GenerateClaims("user-1", "alice", "session-1")
	token, err := jwtManager.GenerateJWT(claims)
	require.NoError(t, err)

	parsed, err := jwtManager.ValidateJWT(token)
	require.NoError(t, err)

	mapClaims, ok := parsed.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", mapClaims["sub"])
	assert.Equal(t, "alice", mapClaims["username"])
	assert.Equal(t, "session-1", mapClaims["sid"])
}

func TestValidateJWTRejectsForeignSignature(t *testing.T) {
	jwtManager := newTestManager(t)
	otherManager := newTestManager(t)

	token, err := otherManager.GenerateJWT(otherManager.GenerateClaims("user-1", "alice", "session-1"))
	require.NoError(t, err)

	_, err = jwtManager.ValidateJWT(token)
	assert.Error(t, err)
}

func TestActivationTokenRoundTrip(t *testing.T) {
	jwtManager := newTestManager(t)

	fingerprint := ActivationFingerprint("hash", "alice@example.com", nil)
	token, err := jwtManager.GenerateActivationToken("user-1", fingerprint)
	require.NoError(t, err)

	userId, parsedFingerprint, err := jwtManager.ValidateActivationToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userId)
	assert.Equal(t, fingerprint, parsedFingerprint)
}

func TestActivationTokenRejectsTampering(t *testing.T) {
	jwtManager := newTestManager(t)

	token, err := jwtManager.GenerateActivationToken("user-1", ActivationFingerprint("hash", "alice@example.com", nil))
	require.NoError(t, err)

	_, _, err = jwtManager.ValidateActivationToken(token + "x")
	assert.Error(t, err)
}

func TestActivationFingerprintChangesWithState(t *testing.T) {
	dormant := ActivationFingerprint("hash", "alice@example.com", nil)

	activatedAt := time.Now()
	activated := ActivationFingerprint("hash", "alice@example.com", &activatedAt)
	assert.NotEqual(t, dormant, activated, "activation must invalidate outstanding tokens")

	rehashed := ActivationFingerprint("other-hash", "alice@example.com", nil)
	assert.NotEqual(t, dormant, rehashed, "a password change must invalidate outstanding tokens")

	readdressed := ActivationFingerprint("hash", "bob@example.com", nil)
	assert.NotEqual(t, dormant, readdressed, "an email change must invalidate outstanding tokens")
}
