package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
)

// Sealed blob layout: IV (16 bytes) || ciphertext || HMAC-SHA256 tag (32 bytes).
const (
	// IVLength is the AES block size used for the CBC initialization vector.
	IVLength = aes.BlockSize

	// TagLength is the length of the HMAC-SHA256 integrity tag.
	TagLength = sha256.Size

	// minSealedLength is IV plus one padded block plus the tag.
	minSealedLength = IVLength + aes.BlockSize + TagLength
)

// Sentinel errors returned by Seal and Open.
var (
	// ErrSealTooShort indicates a sealed blob is truncated.
	ErrSealTooShort = errors.New("crypto: sealed data too short")

	// ErrSealIntegrity indicates the integrity tag did not verify: either
	// the master password is wrong or the blob was tampered with. The two
	// cases are cryptographically indistinguishable.
	ErrSealIntegrity = errors.New("crypto: integrity check failed (wrong master password or corrupted data)")

	// ErrSealCorrupt indicates the decrypted padding is invalid even though
	// the tag verified, which means the stored record is corrupt.
	ErrSealCorrupt = errors.New("crypto: sealed data is corrupt")
)

// Seal encrypts a single secret value under a key derived fresh from the
// master password and a newly generated salt.
//
// Every call generates a fresh salt and a fresh IV, so sealing the same
// plaintext twice under the same password never produces the same key,
// ciphertext, or salt. The plaintext is padded with PKCS#7, encrypted with
// AES-256-CBC, and the IV and ciphertext are authenticated with
// HMAC-SHA256 under a separate MAC key stretched from the same derivation.
//
// Returns the opaque sealed blob (IV || ciphertext || tag) and the salt,
// both of which must be stored to open the secret later.
func Seal(plaintext []byte, masterPassword string) (sealed, salt []byte, err error) {
	salt, err = NewSalt()
	if err != nil {
		return nil, nil, err
	}

	encKey, macKey := deriveKeyPair([]byte(masterPassword), salt)
	defer SecureWipe(encKey)
	defer SecureWipe(macKey)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: failed to create cipher: %w", err)
	}

	iv := make([]byte, IVLength)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("crypto: failed to generate IV: %w", err)
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	sealed = make([]byte, 0, IVLength+len(ciphertext)+TagLength)
	sealed = append(sealed, iv...)
	sealed = append(sealed, ciphertext...)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(sealed)
	sealed = mac.Sum(sealed)

	return sealed, salt, nil
}

// Open decrypts a sealed blob using the key derived from the supplied salt
// and master password.
//
// The integrity tag is verified before any decryption, so a wrong master
// password is reported deterministically as ErrSealIntegrity instead of
// yielding garbage plaintext. Truncated blobs return ErrSealTooShort and
// invalid padding under a verified tag returns ErrSealCorrupt.
func Open(sealed, salt []byte, masterPassword string) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, ErrMalformedSalt
	}
	if len(sealed) < minSealedLength {
		return nil, ErrSealTooShort
	}

	body := sealed[:len(sealed)-TagLength]
	tag := sealed[len(sealed)-TagLength:]

	encKey, macKey := deriveKeyPair([]byte(masterPassword), salt)
	defer SecureWipe(encKey)
	defer SecureWipe(macKey)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, ErrSealIntegrity
	}

	iv := body[:IVLength]
	ciphertext := body[IVLength:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrSealCorrupt
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: failed to create cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := unpadPKCS7(padded, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// padPKCS7 pads data to a multiple of blockSize. A full padding block is
// appended when the input is already aligned, so padding always round-trips
// arbitrary plaintext bytes, including values containing the pad byte.
func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// unpadPKCS7 validates and strips PKCS#7 padding by value.
func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrSealCorrupt
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrSealCorrupt
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrSealCorrupt
		}
	}
	return data[:len(data)-padLen], nil
}
