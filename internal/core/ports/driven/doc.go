// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CacheStore: Per-company research records
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These are always injected; when a capability is not configured the
// composition root passes the no-op implementation from adapters/driven/noop,
// and the research pipeline degrades gracefully:
//
//   - LLMService: Text generation. Without it answers are empty and the planner uses templates.
//   - EmbeddingService: Vector embeddings. Without it the evidence index uses seeded fallback vectors.
//   - SearchProvider: Web search. Without it only cached material is used.
//   - DocumentFetcher / TextExtractor: PDF discovery and extraction for deep collection.
//   - ReportRenderer: Report document output.
//   - CompanyFeed: Social updates about a company.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
