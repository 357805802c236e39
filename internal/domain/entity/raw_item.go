// Package entity defines the core domain entities and validation logic for the application.
// It contains RawItem, the normalized content record every collector produces,
// together with content normalization, hashing, and domain-specific errors.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the RawItem schema version stamped on every collected item.
const SchemaVersion = "1.0.0"

// Engagement holds the provider-reported engagement counters for an item.
// A nil field means the provider did not report it, which is different from zero.
type Engagement struct {
	Likes       *int `json:"likes"`
	Comments    *int `json:"comments"`
	Shares      *int `json:"shares"`
	Views       *int `json:"views"`
	Impressions *int `json:"impressions"`
}

// RawItem is a single normalized content record returned by a collector.
// ContentHash is the exact-duplicate key and is a pure function of the normalized Content.
type RawItem struct {
	ID            string     `json:"id"`
	SchemaVersion string     `json:"schemaVersion"`
	Source        string     `json:"source"`
	SourceURL     string     `json:"sourceUrl"`
	RetrievedAt   time.Time  `json:"retrievedAt"`
	Content       string     `json:"content"`
	ContentHash   string     `json:"contentHash"`
	Title         string     `json:"title,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	Author        string     `json:"author,omitempty"`
	AuthorHandle  string     `json:"authorHandle,omitempty"`
	Citations     []string   `json:"citations,omitempty"`
	Engagement    Engagement `json:"engagement"`
}

// NewRawItem builds a RawItem with its hash, stable ID, schema version and
// default citation filled in. The returned item is validated; blank content
// is rejected with ErrInvalidInput before anything is hashed.
func NewRawItem(source, sourceURL, content string, retrievedAt time.Time) (RawItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return RawItem{}, fmt.Errorf("%w: %w", ErrInvalidInput, &ValidationError{Field: "content", Message: "must not be empty"})
	}
	hash := HashContent(content)
	item := RawItem{
		ID:            StableID(sourceURL, hash),
		SchemaVersion: SchemaVersion,
		Source:        source,
		SourceURL:     sourceURL,
		RetrievedAt:   retrievedAt.UTC(),
		Content:       content,
		ContentHash:   hash,
		Citations:     []string{sourceURL},
	}
	if err := item.Validate(); err != nil {
		return RawItem{}, err
	}
	return item, nil
}

// StableID derives a deterministic UUIDv5 from the item URL and content hash,
// so re-collecting the same content from the same URL yields the same ID.
func StableID(sourceURL, contentHash string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(sourceURL+":"+contentHash)).String()
}

// WithContent returns a copy of r carrying new content, with the content
// hash and ID recomputed so the hash invariant keeps holding.
func (r RawItem) WithContent(content string) RawItem {
	r.Content = strings.TrimSpace(content)
	r.ContentHash = HashContent(r.Content)
	r.ID = StableID(r.SourceURL, r.ContentHash)
	return r
}

// Validate checks the minimum fields downstream stages rely on.
func (r *RawItem) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return &ValidationError{Field: "id", Message: "must be a UUID"}
	}
	if strings.TrimSpace(r.Source) == "" {
		return &ValidationError{Field: "source", Message: "required"}
	}
	if err := ValidateURL(r.SourceURL); err != nil {
		return err
	}
	if r.RetrievedAt.IsZero() {
		return &ValidationError{Field: "retrievedAt", Message: "required"}
	}
	if strings.TrimSpace(r.Content) == "" {
		return &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if !IsContentHash(r.ContentHash) {
		return &ValidationError{Field: "contentHash", Message: "must be 16 lowercase hex characters"}
	}
	if r.ContentHash != HashContent(r.Content) {
		return &ValidationError{Field: "contentHash", Message: "does not match content"}
	}
	return nil
}

// IntPtr returns a pointer to v. Collectors use it to fill Engagement fields.
func IntPtr(v int) *int {
	return &v
}
