package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// sealedPrefix marks values produced by AesGcmEncryptor so rows written
// before a key was configured can still be read.
const sealedPrefix = "enc:v1:"

type Encryptor interface {
	Encrypt(plain string) (string, error)
	Decrypt(stored string) (string, error)
}

// FromKey builds an encryptor from configuration. An empty key disables
// encryption. A key is either 32 raw bytes or 32 bytes in standard base64.
func FromKey(key string) (Encryptor, error) {
	if key == "" {
		return NopEncryptor{}, nil
	}
	raw := []byte(key)
	if len(raw) != 32 {
		decoded, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, errors.New("encryption key must be 32 bytes or base64 of 32 bytes")
		}
		raw = decoded
	}
	return NewAesGcmEncryptor(raw)
}

type AesGcmEncryptor struct {
	gcm cipher.AEAD
}

func NewAesGcmEncryptor(key []byte) (*AesGcmEncryptor, error) {
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AesGcmEncryptor{gcm: gcm}, nil
}

func (e *AesGcmEncryptor) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := e.gcm.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *AesGcmEncryptor) Decrypt(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", err
	}
	if len(data) < e.gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:e.gcm.NonceSize()], data[e.gcm.NonceSize():]
	plain, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// NopEncryptor stores values as given.
type NopEncryptor struct{}

func (NopEncryptor) Encrypt(plain string) (string, error) { return plain, nil }

func (NopEncryptor) Decrypt(stored string) (string, error) {
	if strings.HasPrefix(stored, sealedPrefix) {
		return "", errors.New("value is encrypted but no encryption key is configured")
	}
	return stored, nil
}
