// Package blob stores uploaded media and serves it under stable public URLs.
// Uploads are copied in fixed-size chunks so callers can observe fractional
// progress the way a remote storage SDK would report it.
package blob

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where stored blobs are served from.
const URLPrefix = "/media/"

// chunkSize is the unit of upload progress.
const chunkSize = 64 << 10

// Store persists blobs in the database alongside the rest of the data, so a
// single file remains the whole deployment.
type Store struct {
	db *sql.DB
}

// NewStore returns a blob store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Put reads size bytes from r and stores them under a fresh key, keeping the
// extension of name. onProgress (optional) receives nondecreasing fractions
// in (0, 1], the final call always being exactly 1 on success. On any error
// nothing is stored: a failed upload leaves no partial blob and the caller's
// previous image reference untouched. Returns the public URL of the blob.
func (s *Store) Put(ctx context.Context, name, mime string, r io.Reader, size int64, onProgress func(float64)) (string, error) {
	if size < 0 {
		return "", fmt.Errorf("negative upload size %d", size)
	}

	var buf bytes.Buffer
	buf.Grow(int(size))

	var written int64
	for written < size {
		n := int64(chunkSize)
		if rest := size - written; rest < n {
			n = rest
		}
		m, err := io.CopyN(&buf, r, n)
		written += m
		if err != nil {
			return "", fmt.Errorf("reading upload after %d bytes: %w", written, err)
		}
		if onProgress != nil {
			onProgress(float64(written) / float64(size))
		}
	}
	if size == 0 && onProgress != nil {
		onProgress(1)
	}

	key := uuid.NewString() + sanitizeExt(name)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, data, mime, size) VALUES (?, ?, ?, ?)`,
		key, buf.Bytes(), mime, size,
	)
	if err != nil {
		return "", fmt.Errorf("storing blob: %w", err)
	}

	return URLPrefix + key, nil
}

// Get returns a blob's data and MIME type, or nil data if the key is unknown.
func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, mime FROM blobs WHERE key = ?`, key,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting blob: %w", err)
	}
	return data, mime, nil
}

// Delete removes a blob. Deleting an unknown key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// sanitizeExt keeps a short, lowercase file extension from the original
// name, or nothing if the name has none worth keeping.
func sanitizeExt(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if len(ext) < 2 || len(ext) > 5 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
