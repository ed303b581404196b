// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Entity is a named concept extracted from article text.
type Entity struct {
	// Name is the entity as it appears in the article.
	Name string `json:"name" yaml:"name"`

	// Type is a free-text semantic category (e.g. "Organization", "Concept").
	Type string `json:"type" yaml:"type"`
}

// Relationship is a directed, labeled edge between two entity names.
// Endpoints are not checked against the entity set of the same extraction.
type Relationship struct {
	Source string `json:"source" yaml:"source"`
	Label  string `json:"label" yaml:"label"`
	Target string `json:"target" yaml:"target"`
}

// Result is the outcome of processing one input URL. A nil Err marks a
// successful extraction; otherwise Entities and Relationships are empty.
type Result struct {
	// Index is the 1-based position of the URL in the input list.
	Index int `json:"index" yaml:"index"`

	// URL is the source article address.
	URL string `json:"url" yaml:"url"`

	// Entities holds the deduplicated entities in first-occurrence order.
	Entities []Entity `json:"entities" yaml:"entities"`

	// Relationships holds the triples returned by the extractor.
	Relationships []Relationship `json:"relationships" yaml:"relationships"`

	// Err records why the URL failed. Nil on success.
	Err error `json:"-" yaml:"-"`
}

// OK reports whether extraction succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Reason returns the failure message, or "" on success.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Failed builds a failure Result for the URL at position index.
func Failed(index int, url string, err error) Result {
	return Result{Index: index, URL: url, Err: err}
}

// Row is one line of the tag table: an entity found at a source URL.
type Row struct {
	URL        string `json:"link" yaml:"link"`
	EntityName string `json:"tag" yaml:"tag"`
	EntityType string `json:"tag_type" yaml:"tag_type"`
}
