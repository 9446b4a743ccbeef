package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// SourceType identifies the origin of an indexed chunk.
type SourceType string

const (
	SourcePDF     SourceType = "pdf"
	SourceYouTube SourceType = "youtube"
)

// Metadata carries the tags attached to a chunk at ingestion time.
// Page holds the page number for PDFs and the start offset in seconds
// for video transcripts.
type Metadata struct {
	Title         string     `json:"title"`
	Source        string     `json:"source"`
	Type          SourceType `json:"type"`
	Page          int        `json:"page"`
	Audience      []string   `json:"audience"`
	NefacCategory []string   `json:"nefac_category"`
	ResourceType  []string   `json:"resource_type"`
	Summary       string     `json:"summary,omitempty"`
}

// Chunk is the unit of retrievable content. Chunks are immutable once they
// enter the index; retrieval components must treat them as read-only.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Normalize ensures the tag sets are present (possibly empty) so that
// metadata predicates stay total. Ingestion calls this before indexing.
func (m *Metadata) Normalize() {
	if m.Audience == nil {
		m.Audience = []string{}
	}
	if m.NefacCategory == nil {
		m.NefacCategory = []string{}
	}
	if m.ResourceType == nil {
		m.ResourceType = []string{}
	}
}

// DedupKey returns the chunk identity used by the document formatter:
// title, page-or-timestamp, and a hash of the first 100 content characters.
func (c Chunk) DedupKey() string {
	prefix := c.Content
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	sum := sha256.Sum256([]byte(prefix))
	return c.Metadata.Title + "\x00" + strconv.Itoa(c.Metadata.Page) + "\x00" + hex.EncodeToString(sum[:8])
}

// Fingerprint returns the serialized structural identity of the chunk,
// used for exact-equality deduplication across retrieval fan-outs.
func (c Chunk) Fingerprint() string {
	b, err := json.Marshal(c)
	if err != nil {
		// Chunk is a plain value type; Marshal cannot fail in practice.
		return c.Metadata.Title + "\x00" + c.Content
	}
	return string(b)
}
