// package models defines the data model shared by the catalog adapter, classifier and split engine
package models

import (
	"fmt"
	"strings"
	"time"
)

// Track is a playlist entry as read from the catalog. It is never mutated after it is read.
type Track struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	ArtistIDs []string `json:"artist_ids"`
	AlbumID   string   `json:"album_id,omitempty"`
}

// Playlist represents a playlist owned by some catalog user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// SplitMode selects the classification rule of a split.
type SplitMode int

const (
	SplitUnset SplitMode = iota
	SplitByArtist
	SplitByLabel
)

func (m SplitMode) String() string {
	switch m {
	case SplitByArtist:
		return "artist"
	case SplitByLabel:
		return "label"
	default:
		return ""
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (m SplitMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *SplitMode) UnmarshalText(b []byte) error {
	mode, err := ParseSplitMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseSplitMode maps "artist"/"artists" and "label"/"labels" (any case) to a [SplitMode].
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "artist", "artists":
		return SplitByArtist, nil
	case "label", "labels":
		return SplitByLabel, nil
	default:
		return SplitUnset, fmt.Errorf("unknown split mode %q (want artist or label)", s)
	}
}

// Pool is a named set of matching keys: artist ids in artist mode, label names in label mode.
type Pool struct {
	Name string
	keys []string
	set  map[string]struct{}
}

// NewPool builds a pool from keys, dropping duplicates but keeping first-seen order.
func NewPool(name string, keys ...string) Pool {
	p := Pool{Name: name, set: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		if _, ok := p.set[k]; ok {
			continue
		}
		p.set[k] = struct{}{}
		p.keys = append(p.keys, k)
	}
	return p
}

// Contains reports whether key is a member of the pool. Matching is exact and case-sensitive.
func (p Pool) Contains(key string) bool {
	_, ok := p.set[key]
	return ok
}

// Intersects reports whether any of keys is a member of the pool.
func (p Pool) Intersects(keys []string) bool {
	for _, k := range keys {
		if p.Contains(k) {
			return true
		}
	}
	return false
}

// Keys returns the pool members in insertion order.
func (p Pool) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of distinct keys.
func (p Pool) Len() int { return len(p.keys) }

// AlbumLabel is a cached album to label mapping.
type AlbumLabel struct {
	AlbumID   string    `json:"album_id"`
	Label     string    `json:"label"`
	FetchedAt time.Time `json:"fetched_at"`
}

// LabelCount is the number of cached albums published under one label.
type LabelCount struct {
	Label  string `json:"label"`
	Albums int    `json:"albums"`
}
