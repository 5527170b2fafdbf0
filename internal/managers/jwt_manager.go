package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const activationTokenLifetime = 48 * time.Hour

var errInvalidActivationToken = errors.New("invalid activation token")

// JWTMgr handles signing and validation of both session tokens and
// activation tokens. Activation tokens are stateless: they carry a
// fingerprint of the account state they were issued against, so they stop
// validating as soon as that state changes (e.g. once the account is
// activated).
type JWTMgr interface {
	GenerateJWT(claims jwt.Claims) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	GenerateClaims(userId, username, sessionId string) jwt.Claims
	GenerateActivationToken(userId, fingerprint string) (string, error)
	ValidateActivationToken(tokenString string) (userId, fingerprint string, err error)
}

// JWTManager signs tokens with an ed25519 key pair.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewJWTManager creates a new JWTManager with the given key pair.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey) JWTMgr {
	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
	}
}

// NewJWTManagerFromFile loads the key pair from KEY_PAIR_PATH, generating
// and persisting a fresh pair on first start.
func NewJWTManagerFromFile() (JWTMgr, error) {
	path := os.Getenv("KEY_PAIR_PATH")

	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		privateKey, publicKey, err = generateKeyPair(path)
		if err != nil {
			return nil, err
		}
	}

	return NewJWTManager(privateKey, publicKey), nil
}

// GenerateClaims generates the claims of a session token. The session id
// ties the token to a sessions row, so logout invalidates it.
func (jm *JWTManager) GenerateClaims(userId, username, sessionId string) jwt.Claims {
	return jwt.MapClaims{
		"iss":      "blogserver",
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"sub":      userId,
		"username": username,
		"sid":      sessionId,
	}
}

// GenerateJWT generates a new JWT with the given claims.
func (jm *JWTManager) GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(jm.privateKey)
}

// ValidateJWT validates the given JWT and returns the claims if valid.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}

		return jm.publicKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

// GenerateActivationToken signs a time-bounded activation token for the
// given user, bound to the fingerprint of the account state.
func (jm *JWTManager) GenerateActivationToken(userId, fingerprint string) (string, error) {
	claims := jwt.MapClaims{
		"iss": "blogserver",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(activationTokenLifetime).Unix(),
		"sub": userId,
		"fpr": fingerprint,
	}

	return jm.GenerateJWT(claims)
}

// ValidateActivationToken checks the signature and expiry of an activation
// token and returns the user id and state fingerprint it was issued for.
// The caller still has to compare the fingerprint against the account's
// current state.
func (jm *JWTManager) ValidateActivationToken(tokenString string) (string, string, error) {
	claims, err := jm.ValidateJWT(tokenString)
	if err != nil {
		return "", "", err
	}

	mapClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		return "", "", errInvalidActivationToken
	}

	userId, okSub := mapClaims["sub"].(string)
	fingerprint, okFpr := mapClaims["fpr"].(string)
	if !okSub || !okFpr {
		return "", "", errInvalidActivationToken
	}

	return userId, fingerprint, nil
}

// ActivationFingerprint hashes the account state an activation token is
// bound to. Activating the account (or changing the password or email)
// changes the fingerprint and thereby invalidates outstanding tokens.
func ActivationFingerprint(passwordHash, email string, activatedAt *time.Time) string {
	state := passwordHash + "|" + email + "|"
	if activatedAt != nil {
		state += activatedAt.UTC().Format(time.RFC3339Nano)
	}

	sum := sha256.Sum256([]byte(state))
	return hex.EncodeToString(sum[:])
}

// generateKeyPair generates a new key pair and saves it to a file.
func generateKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	if err = saveKeyPair(privateKey, publicKey, path); err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// saveKeyPair saves the key pair to the specified file.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	keyPairBytes := append(privateKey, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0600)
}

// loadKeyPair loads the key pair from the specified file.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	// The key pair is the concatenation of private and public keys
	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	privateKey := ed25519.PrivateKey(keyPairBytes[:ed25519.PrivateKeySize])
	publicKey := ed25519.PublicKey(keyPairBytes[ed25519.PrivateKeySize:])

	return privateKey, publicKey, nil
}
