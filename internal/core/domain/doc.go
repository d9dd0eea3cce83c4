// Package domain defines the core business entities for reqscan.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded input file with its detected format
//   - ExtractedText: Page-ordered text pulled out of a document
//   - RequirementSet: The classified result of an analysis
//   - Report: The data rendered into PDF and DOCX output
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
