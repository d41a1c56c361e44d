// Package importer implements the part import pipeline.
//
// # Architecture
//
// The pipeline flows in one direction:
//
//	part number + supplier → suppliers.Adapter → CanonicalPart →
//	MatchCategory → ImportPreview → operator edits → Merge →
//	Writer.Commit → ImportResult
//
// Preview is read-only: it fetches from the supplier and reads the
// destination category listing but never writes. Import re-runs the same
// fetch-and-match — client-supplied catalog data is never trusted — then
// applies operator overrides and commits part, supplier link, parameters
// and price breaks in order.
//
// Failure policy for commits: a failure before the base part exists aborts
// the whole operation; a failure after it yields a partial result that
// enumerates the failed sub-resources. Nothing is rolled back, because the
// destination has no transaction spanning these calls and a silent
// compensation would hide an inconsistent external state from the operator.
package importer
