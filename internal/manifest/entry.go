// Package manifest keeps an append-only, hash-chained record of the files
// filed into each session folder.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultFileName = ".auditsnap-manifest.jsonl"
	genesisInput    = "auditsnap-genesis"
)

// Entry is one filed evidence file.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"ts"`
	PrevHash string    `json:"prev_hash"`
	ItemID   string    `json:"item_id"`
	Origin   string    `json:"origin"`
	Source   string    `json:"source"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	SHA256   string    `json:"sha256"`
	Hash     string    `json:"hash"` // SHA-256 of the entry with Hash empty
}

func genesisHash() string {
	h := sha256.Sum256([]byte(genesisInput))
	return fmt.Sprintf("%x", h)
}

func computeHash(e Entry) string {
	e.Hash = ""
	data, _ := json.Marshal(e)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}

func short(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}
