// Package domain defines the core business entities for mailrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Message: A raw mail message fetched from the provider
//   - Document: A message after normalisation, ready for chunking
//   - Chunk: The unit of embedding
//   - EmbeddingRecord: A vector plus metadata, owned by the vector store
//   - QueryResult: Similarity search output
//   - Answer: A generated answer with its supporting contexts
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
