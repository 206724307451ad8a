package gitlet

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rybkr/gitlet/internal/fsio"
)

// Store is the content-addressed object store: blobs and commits keyed
// by hex id under objects/<first-2-chars>/<remaining-chars>. Every
// serialized object is prefixed with a one-byte ObjectType tag so the
// store can answer "is this a commit?" by reading a single byte, never
// by a speculative typed decode.
type Store struct {
	root    string // the .gitlet directory
	retrier fsio.Retrier
}

// NewStore returns a Store rooted at gitDir (the .gitlet directory).
func NewStore(gitDir string, retrier fsio.Retrier) *Store {
	return &Store{root: gitDir, retrier: retrier}
}

func (s *Store) objectPath(id ID) string {
	str := string(id)
	return filepath.Join(s.root, "objects", str[:2], str[2:])
}

// put writes payload (already gob-encoded by the caller) tagged with typ
// under id. Writes are idempotent: identical content at the same id
// overwrites with identical bytes.
func (s *Store) put(id ID, typ ObjectType, payload []byte) error {
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, byte(typ))
	buf = append(buf, payload...)
	return s.retrier.WriteFileAtomic(s.objectPath(id), buf, 0o644)
}

// get reads the object stored at id, returning its type tag and the
// gob-encoded payload that follows it.
func (s *Store) get(id ID) (ObjectType, []byte, error) {
	data, err := s.retrier.ReadFile(s.objectPath(id))
	if err != nil {
		return 0, nil, fmt.Errorf("store: reading object %s: %w", id, err)
	}
	if len(data) < 1 {
		return 0, nil, fmt.Errorf("store: object %s is empty", id)
	}
	return ObjectType(data[0]), data[1:], nil
}

// typeOf reads only the one discriminator byte of the object at id,
// without decoding the remainder — the cheap "is this a commit?" check
// resolve() needs.
func (s *Store) typeOf(id ID) (ObjectType, error) {
	f, err := os.Open(s.objectPath(id)) //nolint:gosec // path is built from a validated hex id
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var tag [1]byte
	if _, err := f.Read(tag[:]); err != nil {
		return 0, fmt.Errorf("store: reading type tag of %s: %w", id, err)
	}
	return ObjectType(tag[0]), nil
}

// Resolve expands a hex prefix of at least 4 characters to the full id
// of the unique commit object it identifies.
func (s *Store) Resolve(prefix string) (ID, error) {
	if len(prefix) < 4 {
		return "", NewError(ShortID)
	}

	shard := prefix[:2]
	shardDir := filepath.Join(s.root, "objects", shard)

	entries, err := os.ReadDir(shardDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", NewError(NoSuchCommit)
		}
		return "", fmt.Errorf("store: reading shard %s: %w", shard, err)
	}

	var matches []ID
	for _, e := range entries {
		full := shard + e.Name()
		if !strings.HasPrefix(full, prefix) {
			continue
		}
		id := ID(full)
		tag, err := s.typeOf(id)
		if err != nil || tag != commitTag {
			continue
		}
		matches = append(matches, id)
	}

	switch len(matches) {
	case 0:
		return "", NewError(NoSuchCommit)
	case 1:
		return matches[0], nil
	default:
		return "", NewError(AmbiguousID)
	}
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
