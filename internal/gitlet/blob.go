package gitlet

import (
	"crypto/sha1" //nolint:gosec // identity hashing, not a cryptographic use
	"encoding/hex"
	"fmt"
	"os"
)

// Blob is an immutable file-content snapshot. Its identity mixes in the
// source path, so two files with identical bytes at different paths
// produce distinct blob ids.
type Blob struct {
	ID      ID
	Path    string
	Content []byte
}

func computeBlobID(path string, content []byte) ID {
	h := sha1.New() //nolint:gosec // identity hashing, not a cryptographic use
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// NewBlobFromFile reads path's current bytes and computes its id. It does
// not write anything to the store; call Save for that.
func NewBlobFromFile(path string) (*Blob, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is resolved by the engine, under the working root
	if err != nil {
		return nil, fmt.Errorf("gitlet: reading %s: %w", path, err)
	}
	return &Blob{
		ID:      computeBlobID(path, content),
		Path:    path,
		Content: content,
	}, nil
}

// Save persists the blob to store. Idempotent: saving the same content at
// the same path twice writes the same bytes to the same id.
func (b *Blob) Save(store *Store) error {
	payload, err := gobEncode(b)
	if err != nil {
		return fmt.Errorf("gitlet: encoding blob %s: %w", b.ID, err)
	}
	return store.put(b.ID, blobTag, payload)
}

// LoadBlob reads the blob identified by id from store.
func LoadBlob(store *Store, id ID) (*Blob, error) {
	tag, payload, err := store.get(id)
	if err != nil {
		return nil, err
	}
	if tag != blobTag {
		return nil, fmt.Errorf("gitlet: object %s is a %s, not a blob", id, tag)
	}
	var b Blob
	if err := gobDecode(payload, &b); err != nil {
		return nil, fmt.Errorf("gitlet: decoding blob %s: %w", id, err)
	}
	return &b, nil
}

// Restore writes the blob's stored bytes back to path, overwriting any
// existing content.
func (b *Blob) Restore(path string) error {
	if err := os.WriteFile(path, b.Content, 0o644); err != nil { //nolint:gosec // restoring tracked file content
		return fmt.Errorf("gitlet: restoring %s: %w", path, err)
	}
	return nil
}
