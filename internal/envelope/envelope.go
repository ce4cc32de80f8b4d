package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Version is the envelope format version the service accepts.
	Version = 1

	// Algorithm is the algorithm tag carried in every envelope.
	Algorithm = "AES-256-GCM"

	// MinKeyLength is the minimum pre-shared key length in characters.
	MinKeyLength = 32

	kdfIterations = 100_000
	saltSize      = 16
	ivSize        = 12
	keySize       = 32
)

var (
	// ErrKeyTooShort rejects pre-shared keys under MinKeyLength characters.
	ErrKeyTooShort = errors.New("encryption key must be at least 32 characters")

	// ErrNotSealed reports a payload that failed the encrypted-marker re-check.
	ErrNotSealed = errors.New("payload is not a sealed envelope")

	// ErrCiphertextInvalid reports an envelope whose fields do not decode or
	// whose ciphertext fails GCM authentication.
	ErrCiphertextInvalid = errors.New("envelope ciphertext invalid")
)

// Envelope is the wire container sent in place of plaintext credentials. It
// is created per request and never retained.
type Envelope struct {
	Encrypted  bool   `json:"encrypted"`
	Version    int    `json:"version"`
	Algorithm  string `json:"algorithm"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	KeyHash    string `json:"keyHash"`
	Ciphertext string `json:"ciphertext"`
	Timestamp  string `json:"timestamp"`
}

// Seal encrypts plaintext under the pre-shared key. Salt and IV are fresh per
// call, so two seals of identical plaintext never produce identical output.
func Seal(plaintext []byte, key string, now time.Time) (*Envelope, error) {
	if len(key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return nil, err
	}

	ciphertext := aead.Seal(nil, iv, plaintext, nil)
	keyHash := sha256.Sum256([]byte(key))

	return &Envelope{
		Encrypted:  true,
		Version:    Version,
		Algorithm:  Algorithm,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
		KeyHash:    base64.StdEncoding.EncodeToString(keyHash[:]),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Timestamp:  now.UTC().Format(time.RFC3339),
	}, nil
}

// Open decrypts an envelope produced by Seal (or by any conforming peer).
// It exists for conformance testing against the fixed scheme.
func Open(env *Envelope, key string) ([]byte, error) {
	if env == nil || !env.Encrypted {
		return nil, ErrNotSealed
	}
	if len(key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}
	if env.Version != Version || env.Algorithm != Algorithm {
		return nil, ErrCiphertextInvalid
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil || len(salt) != saltSize {
		return nil, ErrCiphertextInvalid
	}
	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil || len(iv) != ivSize {
		return nil, ErrCiphertextInvalid
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, ErrCiphertextInvalid
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrCiphertextInvalid
	}
	return plaintext, nil
}

// IsSealed re-parses serialized request bytes and reports whether they carry
// the encrypted marker and fields, with no plaintext credential fields at the
// top level. Callers run it on the exact bytes about to be transmitted as a
// second line of defense against a silent cipher bypass.
func IsSealed(raw []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}

	var marker bool
	if err := json.Unmarshal(fields["encrypted"], &marker); err != nil || !marker {
		return false
	}
	for _, required := range []string{"ciphertext", "iv", "salt", "keyHash"} {
		var v string
		if err := json.Unmarshal(fields[required], &v); err != nil || v == "" {
			return false
		}
	}
	for _, plaintext := range []string{"email", "otp", "code"} {
		if _, present := fields[plaintext]; present {
			return false
		}
	}
	return true
}

func newAEAD(key string, salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key([]byte(key), salt, kdfIterations, keySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
