// ABOUTME: Snapshot backups of full JSON exports stored in Charm KV.
// ABOUTME: Keys are snapshot:<ULID> so listing sorts by creation time.
package charm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// SnapshotPrefix namespaces snapshot keys.
const SnapshotPrefix = "snapshot:"

// Snapshot describes one stored backup.
type Snapshot struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Host      string         `json:"host,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
	Size      int            `json:"size"`
}

type snapshotRecord struct {
	Snapshot
	Export json.RawMessage `json:"export"`
}

// SnapshotKey returns the KV key for a snapshot ID.
func SnapshotKey(id string) string {
	return SnapshotPrefix + id
}

// NewSnapshotID returns a fresh ULID string for a snapshot taken at t.
func NewSnapshotID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

// SnapshotTime extracts the creation time encoded in a snapshot ID.
func SnapshotTime(id string) (time.Time, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid snapshot id %q: %w", id, err)
	}
	return ulid.Time(parsed.Time()).UTC(), nil
}

// PushSnapshot stores a JSON export as a new snapshot.
func (c *Client) PushSnapshot(export []byte, host string, counts map[string]int) (*Snapshot, error) {
	if !json.Valid(export) {
		return nil, fmt.Errorf("snapshot export is not valid JSON")
	}

	now := time.Now().UTC()
	rec := snapshotRecord{
		Snapshot: Snapshot{
			ID:        NewSnapshotID(now),
			CreatedAt: now,
			Host:      host,
			Counts:    counts,
			Size:      len(export),
		},
		Export: export,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.set(SnapshotKey(rec.ID), data); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	return &rec.Snapshot, nil
}

// ListSnapshots returns all snapshots, newest first.
func (c *Client) ListSnapshots() ([]Snapshot, error) {
	keys, err := c.keysWithPrefix(SnapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	snapshots := make([]Snapshot, 0, len(keys))
	for _, key := range keys {
		rec, err := c.readSnapshot(key)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, rec.Snapshot)
	}
	return snapshots, nil
}

// GetSnapshot returns a snapshot and its JSON export by ID or ID prefix.
// ULIDs are upper case; prefixes are matched case-insensitively.
func (c *Client) GetSnapshot(idPrefix string) (*Snapshot, []byte, error) {
	key, err := c.resolveKey(SnapshotPrefix, strings.ToUpper(idPrefix))
	if err != nil {
		return nil, nil, err
	}
	rec, err := c.readSnapshot(key)
	if err != nil {
		return nil, nil, err
	}
	return &rec.Snapshot, rec.Export, nil
}

// DeleteSnapshot removes a snapshot by ID or ID prefix.
func (c *Client) DeleteSnapshot(idPrefix string) error {
	key, err := c.resolveKey(SnapshotPrefix, strings.ToUpper(idPrefix))
	if err != nil {
		return err
	}
	return c.delete(key)
}

// PruneSnapshots deletes all but the newest keep snapshots and returns
// how many were removed.
func (c *Client) PruneSnapshots(keep int) (int, error) {
	keys, err := c.keysWithPrefix(SnapshotPrefix)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}
	if keep < 0 {
		keep = 0
	}
	if len(keys) <= keep {
		return 0, nil
	}
	sort.Strings(keys)

	stale := keys[:len(keys)-keep]
	for _, key := range stale {
		if err := c.delete(key); err != nil {
			return 0, fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return len(stale), nil
}

func (c *Client) readSnapshot(key string) (*snapshotRecord, error) {
	data, err := c.get(key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &rec, nil
}
