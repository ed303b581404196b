// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diagram renders extraction results as Mermaid flowcharts, one file
// per input URL.
package diagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/article-graph/internal/dedup"
	"github.com/pdiddy/article-graph/pkg/types"
)

const (
	// DefaultPrefix names diagram files <prefix>_<index>.md.
	DefaultPrefix = "mermaid"

	header       = "graph TD"
	errorNodeID  = "error"
	maxIDLen     = 40
	maxLabelLen  = 40
	maxReasonLen = 80
)

// FileName returns the diagram file name for the URL at 1-based index.
// Success and error diagrams share the pattern so files stay one-to-one
// with input positions.
func FileName(prefix string, index int) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "_" + strconv.Itoa(index) + ".md"
}

// Render returns the Mermaid source for r: the entity graph on success, a
// single error node otherwise.
func Render(r types.Result) string {
	if !r.OK() {
		return RenderError(r.URL, r.Reason())
	}

	var b strings.Builder
	b.WriteString(header + "\n")
	writeSource(&b, r.URL)

	ids := newIDs()
	for _, e := range r.Entities {
		id, isNew := ids.get(e.Name)
		if isNew {
			fmt.Fprintf(&b, "  %s[\"%s\"]\n", id, escape(e.Name))
		}
	}

	// Endpoints that are not among the entities still get a labeled node.
	for _, rel := range r.Relationships {
		for _, name := range []string{rel.Source, rel.Target} {
			if id, isNew := ids.get(name); isNew {
				fmt.Fprintf(&b, "  %s[\"%s\"]\n", id, escape(name))
			}
		}
	}

	for _, rel := range r.Relationships {
		src, _ := ids.get(rel.Source)
		dst, _ := ids.get(rel.Target)
		fmt.Fprintf(&b, "  %s -->|\"%s\"| %s\n", src, escape(truncate(rel.Label, maxLabelLen)), dst)
	}

	return b.String()
}

// RenderError returns the placeholder graph written for a failed URL.
func RenderError(url, reason string) string {
	if reason == "" {
		reason = "unknown error"
	}
	var b strings.Builder
	b.WriteString(header + "\n")
	writeSource(&b, url)
	fmt.Fprintf(&b, "  %s[\"Extraction failed: %s\"]\n", errorNodeID, escape(truncate(reason, maxReasonLen)))
	return b.String()
}

// Write renders r into dir/<prefix>_<index>.md, replacing any existing file,
// and returns the path written.
func Write(dir, prefix string, r types.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating diagram directory: %w", err)
	}
	path := filepath.Join(dir, FileName(prefix, r.Index))
	if err := os.WriteFile(path, []byte(Render(r)), 0o644); err != nil {
		return "", fmt.Errorf("writing diagram %s: %w", path, err)
	}
	return path, nil
}

func writeSource(b *strings.Builder, url string) {
	if url != "" {
		fmt.Fprintf(b, "  %%%% source: %s\n", oneLine(url))
	}
}

// ids hands out stable Mermaid node IDs. Names with the same dedup key share
// an ID; distinct names that sanitize alike get numeric suffixes.
type ids struct {
	byKey map[string]string
	used  map[string]bool
}

func newIDs() *ids {
	return &ids{byKey: map[string]string{}, used: map[string]bool{errorNodeID: true}}
}

func (m *ids) get(name string) (id string, isNew bool) {
	key := dedup.Key(name)
	if id, ok := m.byKey[key]; ok {
		return id, false
	}
	base := NodeID(name)
	id = base
	for n := 2; m.used[id]; n++ {
		id = base + "_" + strconv.Itoa(n)
	}
	m.byKey[key] = id
	m.used[id] = true
	return id, true
}

// NodeID converts a name into a Mermaid-safe identifier: letters and digits
// are kept, everything else becomes '_', and the result is capped at 40 runes.
func NodeID(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	id := truncate(b.String(), maxIDLen)
	switch {
	case id == "":
		return "node"
	case keywords[strings.ToLower(id)]:
		return id + "_"
	}
	return id
}

// keywords are flowchart words that cannot be used as bare node IDs.
var keywords = map[string]bool{
	"end": true, "graph": true, "flowchart": true, "subgraph": true,
	"style": true, "class": true, "classdef": true, "click": true,
	"linkstyle": true, "default": true, "direction": true,
}

// escape makes s safe inside a quoted Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(oneLine(s), `"`, "#quot;")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
