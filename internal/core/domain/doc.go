// Package domain defines the core business entities for dossier.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchHit: A single web search result
//   - EvidenceChunk / EvidenceHit: Indexed document text and its similarity matches
//   - Plan: The planner's decision for one user turn
//   - SynthesisResult / MultiAnswer: Answers returned by the research pipeline
//   - Overview / DeepCollection: Cached research records
//   - AppSettings: Application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
