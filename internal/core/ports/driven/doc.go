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
//   - Normaliser: Transforms raw documents into text form
//   - NormaliserRegistry: Selects appropriate normaliser
//   - PostProcessorPipeline: Chunks normalised content
//   - DocumentStore: Document metadata persistence
//   - SessionStore: Conversation persistence
//   - VectorStore: Chunk and embedding storage with similarity search
//   - EmbeddingProvider: Generates vector embeddings
//   - LLMProvider: Generates chat responses
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PageFetcher: Web page retrieval. Only needed for URL ingestion.
//   - CommandRunner: External tool execution. Only needed for PDF extraction.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
