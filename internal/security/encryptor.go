package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrInvalidCiphertext = errors.New("invalid encrypted string")
	ErrDecryptionFailed  = errors.New("decryption failed")
)

// Encryptor protects credential fields at rest with AES-256-CBC.
//
// The stored form is base64(iv || base64(ciphertext)), where the key is the first
// 32 bytes of the hex encoded SHA-256 of the configured secret. The layout is kept
// compatible with values written by the previous PHP deployment.
type Encryptor struct {
	key []byte
}

func NewEncryptor(secret string) *Encryptor {
	sum := sha256.Sum256([]byte(secret))
	hexKey := hex.EncodeToString(sum[:])
	return &Encryptor{key: []byte(hexKey[:32])}
}

// Encrypt returns the encrypted form of plain. Values that already decrypt with
// this key are returned unchanged.
func (e *Encryptor) Encrypt(plain string) (string, error) {
	if e.IsEncrypted(plain) {
		return plain, nil
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}

	padded := pkcs7Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	inner := base64.StdEncoding.EncodeToString(out)
	return base64.StdEncoding.EncodeToString(append(iv, inner...)), nil
}

func (e *Encryptor) Decrypt(encrypted string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil || len(data) < aes.BlockSize+1 {
		return "", ErrInvalidCiphertext
	}

	iv := data[:aes.BlockSize]
	raw, err := base64.StdEncoding.DecodeString(string(data[aes.BlockSize:]))
	if err != nil || len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, raw)

	plain, ok := pkcs7Unpad(out, aes.BlockSize)
	if !ok {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// IsEncrypted reports whether value decrypts cleanly with this key.
func (e *Encryptor) IsEncrypted(value string) bool {
	_, err := e.Decrypt(value)
	return err == nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
