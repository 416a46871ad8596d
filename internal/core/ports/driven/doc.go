// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the synchroniser to function:
//
//   - CorpusSource: Enumerates eligible files in the watched directory
//   - LedgerStore: Persists the set of file names last indexed
//   - ExtractorRegistry: Turns source files into extracted page text
//   - PostProcessorPipeline: Turns extracted pages into chunks
//   - EmbeddingService: Generates vector embeddings for chunk text
//   - VectorStore: Persists embedded chunks, collection at a time
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
