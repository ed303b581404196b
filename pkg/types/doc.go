// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the article-graph pipeline:
// entities and relationships extracted from an article, the per-URL Result,
// tag table rows, and the configuration for each stage.
package types
