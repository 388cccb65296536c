// Package secrets encrypts stored mail account passwords at rest.
//
// Ciphertext format is hex(iv) + ":" + hex(aes-256-cbc(plaintext)), so every
// value is self-contained and decryptable with only the process-wide secret.
package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	keyLength = 32
	ivLength  = aes.BlockSize

	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// kdfSalt is fixed on purpose: the derived key must be deterministic so
// ciphertexts written by earlier process generations stay decryptable.
var kdfSalt = []byte("salt")

type Cipher struct {
	key []byte
}

// New derives the cipher key from the process-wide secret. The secret itself
// is never used as key material.
func New(secret string) (*Cipher, error) {
	key, err := scrypt.Key([]byte(secret), kdfSalt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, err
	}
	return &Cipher{key: key}, nil
}

// Encrypt returns the encoded ciphertext for plaintext. Empty input encrypts
// to the empty string, mirroring the no-op contract for unset passwords.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. It reports ok=false for any malformed input
// (wrong delimiter count, invalid hex, bad IV length, bad padding) instead of
// returning an error; callers must treat that as "credentials unusable".
func (c *Cipher) Decrypt(encoded string) (string, bool) {
	if encoded == "" {
		return "", false
	}

	parts := strings.Split(encoded, ":")
	if len(parts) != 2 {
		return "", false
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivLength {
		return "", false
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", false
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", false
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return "", false
	}
	return string(unpadded), true
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, false
	}
	for _, pad := range b[len(b)-n:] {
		if int(pad) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
