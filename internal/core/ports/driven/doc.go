// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - MailConnector: Streams messages from the mail provider
//   - Normaliser: Cleans a raw message into a document
//   - PostProcessorPipeline: Splits a document into chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Upserts and searches embedding records
//   - LLMService: Generates answer text
//   - TokenProvider: Supplies access tokens for the mail provider
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
