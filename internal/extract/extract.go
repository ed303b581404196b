// Package extract identifies entities and the relationships between them in
// article text by prompting a language model once per article.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/article-graph/pkg/types"
)

// defaultRelationLabel is used for triples whose label came back empty.
const defaultRelationLabel = "related_to"

// maxPromptChars bounds how much article text is placed in the prompt.
const maxPromptChars = 20000

var (
	// ErrEmptyText is returned when Extract is given no article text.
	ErrEmptyText = errors.New("empty article text")

	// ErrMalformedResponse is returned when the model's reply is not the
	// expected JSON object.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrAPIKeyRequired is returned by a backend that has no credential.
	ErrAPIKeyRequired = errors.New("API key required")
)

// Backend abstracts the language-model API so tests can supply a stub.
// Complete sends a single prompt and returns the model's raw text reply.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extraction holds the entities and triples found in one article.
type Extraction struct {
	Entities      []types.Entity
	Relationships []types.Relationship
}

// Extractor turns article text into an Extraction using a Backend.
type Extractor struct {
	backend Backend
}

// New returns an Extractor that calls backend once per article.
func New(backend Backend) *Extractor {
	return &Extractor{backend: backend}
}

// Extract renders the prompt, calls the backend exactly once, and shapes the
// reply. There is no retry: any backend error is returned wrapped.
func (e *Extractor) Extract(ctx context.Context, text string) (Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return Extraction{}, ErrEmptyText
	}

	prompt, err := renderPrompt(text)
	if err != nil {
		return Extraction{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reply, err := e.backend.Complete(ctx, prompt)
	if err != nil {
		return Extraction{}, fmt.Errorf("calling model: %w", err)
	}

	return parseResponse(reply)
}

// aiResponse is the JSON object the prompt asks the model to return.
type aiResponse struct {
	Entities      []aiEntity       `json:"entities"`
	Relationships []aiRelationship `json:"relationships"`
}

// aiEntity accepts both the prompted keys and the entity/attr_type spelling
// some models fall back to.
type aiEntity struct {
	Name     string `json:"name"`
	Entity   string `json:"entity"`
	Type     string `json:"type"`
	AttrType string `json:"attr_type"`
}

type aiRelationship struct {
	Source string `json:"source"`
	Label  string `json:"label"`
	Target string `json:"target"`
}

// parseResponse decodes a model reply into an Extraction. Entities without a
// name and triples missing an endpoint are dropped; everything else is kept
// in reply order.
func parseResponse(reply string) (Extraction, error) {
	raw := cleanJSON(reply)
	if raw == "" {
		return Extraction{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var out Extraction
	for _, ae := range resp.Entities {
		name := strings.TrimSpace(firstNonEmpty(ae.Name, ae.Entity))
		if name == "" {
			continue
		}
		out.Entities = append(out.Entities, types.Entity{
			Name: name,
			Type: strings.TrimSpace(firstNonEmpty(ae.Type, ae.AttrType)),
		})
	}

	for _, ar := range resp.Relationships {
		src := strings.TrimSpace(ar.Source)
		dst := strings.TrimSpace(ar.Target)
		if src == "" || dst == "" {
			continue
		}
		label := strings.TrimSpace(ar.Label)
		if label == "" {
			label = defaultRelationLabel
		}
		out.Relationships = append(out.Relationships, types.Relationship{
			Source: src,
			Label:  label,
			Target: dst,
		})
	}

	return out, nil
}

// cleanJSON strips Markdown code fences and any prose around the outermost
// JSON object. It returns "" when no object is present.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
