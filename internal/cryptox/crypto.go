// Package cryptox holds the symmetric primitives behind the encrypted
// key/value store: argon2id key derivation and AES-256-GCM sealing of
// JSON-encoded values.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/mynote-app/mynote/internal/common"
	"golang.org/x/crypto/argon2"
)

const nonceSize = 12

// keySalt is fixed so that the same secret always yields the same key on
// every start; the secret itself is the only variable input.
var keySalt = []byte("mynote/securestore/v1")

// ErrMalformedCiphertext is returned when a sealed string is too short or
// not valid base64.
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// DeriveKey stretches an application secret into a 32-byte AES-256 key.
func DeriveKey(secret string) []byte {
	return argon2.IDKey([]byte(secret), keySalt, 1, 64*1024, 4, 32)
}

// EncryptEntry serializes the given entry to JSON and encrypts it using AES-GCM.
//
// The key must be a valid AES key length (16, 24, or 32 bytes). A new random
// 12-byte nonce is generated for each call, and the ciphertext and nonce are
// returned separately.
func EncryptEntry(entry any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(nonceSize)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// DecryptEntry decrypts the given ciphertext using AES-GCM and unmarshals
// the resulting JSON into v. Authentication failures, a wrong key and
// malformed JSON are all reported as errors. When v is a *any, numbers are
// kept as json.Number instead of float64.
func DecryptEntry(ciphertext, nonce, key []byte, v any) error {
	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	if generic, ok := v.(*any); ok {
		dec := json.NewDecoder(bytes.NewReader(plaintext))
		dec.UseNumber()
		return dec.Decode(generic)
	}
	return json.Unmarshal(plaintext, v)
}

// SealString encrypts v and packs nonce and ciphertext into one base64
// string suitable for a text key/value store.
func SealString(v any, key []byte) (string, error) {
	ciphertext, nonce, err := EncryptEntry(v, key)
	if err != nil {
		return "", err
	}
	packed := make([]byte, 0, len(nonce)+len(ciphertext))
	packed = append(packed, nonce...)
	packed = append(packed, ciphertext...)
	return base64.StdEncoding.EncodeToString(packed), nil
}

// OpenString reverses SealString, decoding into v.
func OpenString(sealed string, key []byte, v any) error {
	packed, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return ErrMalformedCiphertext
	}
	if len(packed) <= nonceSize {
		return ErrMalformedCiphertext
	}
	return DecryptEntry(packed[nonceSize:], packed[:nonceSize], key, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
