// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PassageStore: Passage persistence (SQLite)
//   - LexicalIndex: Term-frequency search (BM25). Always required.
//   - PageExtractor: Layout-aware PDF text extraction
//   - ConfigStore: Application configuration
//   - RelevanceJudge: Context relevance gating
//
// # Optional Interfaces
//
// These can be nil or no-op - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, dense
//     retrieval is disabled and the ranker runs lexical-only.
//   - VectorIndex: Dense vector storage/search. Only enabled together
//     with EmbeddingService.
//   - Reranker: Cross-encoder re-scoring. A no-op implementation stands
//     in when no rerank backend is configured.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or ingest package
package driven
