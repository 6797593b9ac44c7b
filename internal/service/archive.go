package service

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
)

// noExpiry disables the token age check.
const noExpiry time.Duration = -1

// Archive seals submitted statements so a batch can be audited after import.
// A nil Archive is valid and disables archiving.
type Archive struct {
	key *fernet.Key
}

// NewArchive decodes a base64 Fernet key. An empty key returns a nil Archive.
func NewArchive(encodedKey string) (*Archive, error) {
	if encodedKey == "" {
		return nil, nil
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode archive key: %w", err)
	}
	return &Archive{key: key}, nil
}

// Enabled reports whether statements are archived.
func (a *Archive) Enabled() bool {
	return a != nil && a.key != nil
}

// Seal encrypts and signs a statement. It returns "" when archiving is disabled.
func (a *Archive) Seal(text string) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	token, err := fernet.EncryptAndSign([]byte(text), a.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal statement: %w", err)
	}
	return string(token), nil
}

// Open verifies and decrypts a sealed statement. Archived statements never expire.
func (a *Archive) Open(token string) (string, error) {
	if !a.Enabled() {
		return "", apperrors.ErrArchiveDisabled
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), noExpiry, []*fernet.Key{a.key})
	if msg == nil {
		return "", apperrors.ErrArchiveCorrupt
	}
	return string(msg), nil
}
