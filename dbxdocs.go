// Package dbxdocs indexes a documentation site into a local content store
// and vector index, and serves list-sections and get-documentation queries
// over it for LLM tool calling.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, gemini/).
package dbxdocs
