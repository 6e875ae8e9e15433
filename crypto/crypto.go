package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SaltBytes is the length of the random salt used in move commitments.
const SaltBytes = 32

// CommitmentHash computes the commit-reveal digest for a move.
//
// Encoding contract: a single prefix byte (0x01 = cooperate, 0x00 = defect)
// followed by the raw salt string, hashed with SHA-256. Any mirrored on-chain
// settlement must use the same encoding so reveals validate on both sides.
func CommitmentHash(cooperate bool, salt string) string {
	payload := make([]byte, 0, len(salt)+1)
	if cooperate {
		payload = append(payload, 0x01)
	} else {
		payload = append(payload, 0x00)
	}
	payload = append(payload, salt...)
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}

// NewSalt returns a fresh hex-encoded random salt for a commitment.
func NewSalt() (string, error) {
	buf := make([]byte, SaltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateKeyPair creates a new ed25519 identity for an agent.
func GenerateKeyPair() (publicKeyHex, privateKeyHex string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(pub), hex.EncodeToString(priv), nil
}

// SignMessage signs a message using the private key
func SignMessage(privateKeyHex string, message []byte) (string, error) {
	privateKey, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return "", errors.New("invalid private key format")
	}
	if len(privateKey) != ed25519.PrivateKeySize {
		return "", errors.New("invalid private key length")
	}
	signature := ed25519.Sign(privateKey, message)
	return hex.EncodeToString(signature), nil
}

// VerifySignature verifies a signed message using the public key
func VerifySignature(publicKeyHex, message, signatureHex string) bool {
	publicKey, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	signature, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	return ed25519.Verify(publicKey, []byte(message), signature)
}

// HashData creates a SHA256 hash of the input data
func HashData(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
