// Package domain defines the core business entities for Syndex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceFile: An eligible file discovered in the watched corpus
//   - FileSet: A set of file names, the unit the rebuild decision works on
//   - Document: Extracted page content for one source file
//   - Chunk: An overlapping slice of page text prepared for embedding
//   - IndexEntry: A chunk plus its embedding vector, as persisted
//
// The rebuild decision itself (NeedsRebuild) also lives here: it is the
// central rule of the system and depends on nothing but sets.
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
