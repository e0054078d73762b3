// Package repository persists the admin token as a single local JSON file.
//
// The file is the whole store: a machine has exactly one admin token or
// none, and removing the file is the revocation mechanism. Content is plain
// JSON so support can inspect it, but the file mode keeps it owner-only.
package repository

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// tokenFileMode keeps the token readable by the owning user only.
const tokenFileMode = 0o600

// tokenDirMode keeps the config directory private when the repository has
// to create it.
const tokenDirMode = 0o700

// tokenFile is the serialized form of an admin token. The nonce is hex
// encoded so the file stays greppable; everything else round-trips through
// encoding/json directly.
type tokenFile struct {
	ID        string    `json:"id"`
	Scope     string    `json:"scope"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Nonce     string    `json:"nonce"`
	Signature string    `json:"signature"`
	Method    string    `json:"method"`
}

// FileTokenRepository stores the admin token at a fixed path.
type FileTokenRepository struct {
	path string
}

// Save writes the token to the file, replacing any previous token. The
// parent directory is created when missing; a fresh install has no config
// directory yet.
func (f *FileTokenRepository) Save(ctx context.Context, token *adminDomain.AdminToken) error {
	if err := os.MkdirAll(filepath.Dir(f.path), tokenDirMode); err != nil {
		return apperrors.Wrap(err, "failed to create admin token directory")
	}

	data, err := json.MarshalIndent(tokenFile{
		ID:        token.ID,
		Scope:     token.Scope,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
		Nonce:     hex.EncodeToString(token.Nonce[:]),
		Signature: token.Signature,
		Method:    string(token.Method),
	}, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal admin token")
	}

	if err := os.WriteFile(f.path, data, tokenFileMode); err != nil {
		return apperrors.Wrap(err, "failed to write admin token file")
	}

	return nil
}

// Load reads the persisted token. A missing, unreadable, or corrupt file is
// ErrTokenNotFound: the caller treats all three as "no valid admin session",
// and validation of an intact token happens in the service, not here.
func (f *FileTokenRepository) Load(ctx context.Context) (*adminDomain.AdminToken, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, adminDomain.ErrTokenNotFound
	}

	var stored tokenFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, adminDomain.ErrTokenNotFound
	}

	nonce, err := hex.DecodeString(stored.Nonce)
	if err != nil || len(nonce) != adminDomain.NonceSize {
		return nil, adminDomain.ErrTokenNotFound
	}

	token := &adminDomain.AdminToken{
		ID:        stored.ID,
		Scope:     stored.Scope,
		IssuedAt:  stored.IssuedAt,
		ExpiresAt: stored.ExpiresAt,
		Signature: stored.Signature,
		Method:    adminDomain.Method(stored.Method),
	}
	copy(token.Nonce[:], nonce)

	return token, nil
}

// Delete removes the token file. Deleting an absent file succeeds;
// revocation is idempotent.
func (f *FileTokenRepository) Delete(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(err, "failed to delete admin token file")
	}
	return nil
}

// NewFileTokenRepository creates a repository storing the token at path.
func NewFileTokenRepository(path string) *FileTokenRepository {
	return &FileTokenRepository{path: path}
}
