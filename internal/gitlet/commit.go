package gitlet

import (
	"crypto/sha1" //nolint:gosec // identity hashing, not a cryptographic use
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// dateFormat renders a timestamp as "Wed Dec 31 16:00:00 1969 -0800" — the
// format mandated for both log output and commit-id hashing.
const dateFormat = "Mon Jan _2 15:04:05 2006 -0700"

func formatTimestamp(t time.Time) string {
	return t.Format(dateFormat)
}

// Commit is an immutable DAG node: a timestamp, a message, its parent ids,
// and the full tracked-files snapshot (absolute path -> blob id) at that
// point in history.
type Commit struct {
	ID        ID
	Timestamp time.Time
	Message   string
	Parents   []ID
	Tracked   map[string]ID
}

func computeCommitID(ts time.Time, message string, parents []ID, tracked map[string]ID) ID {
	h := sha1.New() //nolint:gosec // identity hashing, not a cryptographic use
	h.Write([]byte(formatTimestamp(ts)))
	h.Write([]byte{0})
	h.Write([]byte(message))
	h.Write([]byte{0})
	for _, p := range parents {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}

	keys := make([]string, 0, len(tracked))
	for k := range tracked {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(tracked[k]))
		h.Write([]byte{0})
	}

	return ID(hex.EncodeToString(h.Sum(nil)))
}

// NewInitialCommit builds the repository's first commit: epoch-0
// timestamp, the fixed message "initial commit", no parents, an empty
// tracked map.
func NewInitialCommit() *Commit {
	ts := time.Unix(0, 0)
	tracked := map[string]ID{}
	return &Commit{
		ID:        computeCommitID(ts, "initial commit", nil, tracked),
		Timestamp: ts,
		Message:   "initial commit",
		Parents:   nil,
		Tracked:   tracked,
	}
}

// NewCommit builds an ordinary commit with the current wall-clock
// timestamp, the given message, parent list, and tracked map.
func NewCommit(message string, parents []ID, tracked map[string]ID) *Commit {
	ts := time.Now()
	return &Commit{
		ID:        computeCommitID(ts, message, parents, tracked),
		Timestamp: ts,
		Message:   message,
		Parents:   parents,
		Tracked:   tracked,
	}
}

// Save persists the commit to store.
func (c *Commit) Save(store *Store) error {
	payload, err := gobEncode(c)
	if err != nil {
		return fmt.Errorf("gitlet: encoding commit %s: %w", c.ID, err)
	}
	return store.put(c.ID, commitTag, payload)
}

// LoadCommit reads the commit identified by id from store.
func LoadCommit(store *Store, id ID) (*Commit, error) {
	tag, payload, err := store.get(id)
	if err != nil {
		return nil, err
	}
	if tag != commitTag {
		return nil, fmt.Errorf("gitlet: object %s is a %s, not a commit", id, tag)
	}
	var c Commit
	if err := gobDecode(payload, &c); err != nil {
		return nil, fmt.Errorf("gitlet: decoding commit %s: %w", id, err)
	}
	return &c, nil
}

// RestoreTracked writes the blob tracked at path (if any) back to disk.
// Reports whether path was tracked by this commit.
func (c *Commit) RestoreTracked(store *Store, path string) (bool, error) {
	id, ok := c.Tracked[path]
	if !ok {
		return false, nil
	}
	blob, err := LoadBlob(store, id)
	if err != nil {
		return false, err
	}
	if err := blob.Restore(path); err != nil {
		return false, err
	}
	return true, nil
}

// RestoreAllTracked re-materializes this commit's full snapshot into the
// working tree.
func (c *Commit) RestoreAllTracked(store *Store) error {
	for path, id := range c.Tracked {
		blob, err := LoadBlob(store, id)
		if err != nil {
			return err
		}
		if err := blob.Restore(path); err != nil {
			return err
		}
	}
	return nil
}

// LogEntry formats the commit the way `log`/`global-log` print it.
func (c *Commit) LogEntry() string {
	s := "===\n"
	s += fmt.Sprintf("commit %s\n", c.ID)
	if len(c.Parents) == 2 {
		s += fmt.Sprintf("Merge: %s %s\n", c.Parents[0].Short(), c.Parents[1].Short())
	}
	s += fmt.Sprintf("Date: %s\n", formatTimestamp(c.Timestamp))
	s += c.Message + "\n"
	return s
}
