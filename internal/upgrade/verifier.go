package upgrade

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedisct1/go-minisign"
)

// Verifier checks downloaded artifacts before they reach the installer.
type Verifier struct {
	requireChecksum bool
	publicKey       *minisign.PublicKey
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// RequireChecksum makes a missing published checksum a verification failure.
func RequireChecksum(required bool) VerifierOption {
	return func(v *Verifier) { v.requireChecksum = required }
}

// WithPublicKey enables minisign signature checks with key.
func WithPublicKey(key minisign.PublicKey) VerifierOption {
	return func(v *Verifier) { v.publicKey = &key }
}

// NewVerifier creates a Verifier. Without options it checks the SHA-256
// checksum when one is published and skips signatures.
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// LoadPublicKey reads a minisign public key from keyOrPath, which is either
// a file written by `minisign -G` or the base64 key itself.
func LoadPublicKey(keyOrPath string) (minisign.PublicKey, error) {
	keyOrPath = strings.TrimSpace(keyOrPath)
	if info, err := os.Stat(keyOrPath); err == nil && !info.IsDir() {
		key, err := minisign.NewPublicKeyFromFile(keyOrPath)
		if err != nil {
			return minisign.PublicKey{}, parseError("Invalid minisign public key file", err)
		}
		return key, nil
	}
	key, err := minisign.NewPublicKey(keyOrPath)
	if err != nil {
		return minisign.PublicKey{}, parseError("Invalid minisign public key", err)
	}
	return key, nil
}

// VerifiesSignatures reports whether a public key is configured.
func (v *Verifier) VerifiesSignatures() bool {
	return v.publicKey != nil
}

// VerifyChecksum compares the SHA-256 of filePath with expected.
// An empty expected value passes unless checksums are required.
func (v *Verifier) VerifyChecksum(filePath, expected string) error {
	expected = strings.ToLower(strings.TrimSpace(expected))
	if expected == "" {
		if v.requireChecksum {
			return verificationError("No checksum published for the update", nil)
		}
		return nil
	}

	actual, err := fileSHA256(filePath)
	if err != nil {
		return verificationError("Failed to calculate file checksum", err)
	}

	if actual != expected {
		return verificationError(
			fmt.Sprintf("Checksum mismatch: expected %s, got %s", expected, actual), nil)
	}
	return nil
}

// VerifySignature checks a minisign signature over filePath.
func (v *Verifier) VerifySignature(filePath string, signature []byte) error {
	if v.publicKey == nil {
		return nil
	}

	sig, err := minisign.DecodeSignature(string(signature))
	if err != nil {
		return verificationError("Malformed minisign signature", err)
	}

	// #nosec G304 -- path is the artifact this process just downloaded
	content, err := os.ReadFile(filePath)
	if err != nil {
		return verificationError("Failed to read artifact", err)
	}

	valid, err := v.publicKey.Verify(content, sig)
	if err != nil {
		return verificationError("Signature verification error", err)
	}
	if !valid {
		return verificationError("Signature verification failed", nil)
	}
	return nil
}

// fileSHA256 calculates the SHA256 hash of a file.
func fileSHA256(filePath string) (string, error) {
	// #nosec G304 -- path is the artifact this process just downloaded
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
