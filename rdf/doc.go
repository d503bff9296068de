// Package rdf provides a compact RDF term model and a streaming Turtle reader.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// The reader is push-style: ReadTurtle walks a document once and reports
// base changes, prefix declarations and triples to a Sink, in document
// order. Nothing is buffered beyond the statement being parsed, so a sink
// may stop early (return ErrStop) or filter statements as they arrive.
//
// Example:
//
//	var triples []rdf.Triple
//	err := rdf.ReadTurtleFile("manifest.ttl", "", rdf.Collect(&triples), rdf.DefaultDecodeOptions())
//	if err != nil {
//	    // handle error
//	}
//
// Blank node labels are scoped to a document. Set DecodeOptions.BlankPrefix
// to keep labels from different documents apart when they share a store.
//
// Errors:
//
// Parse failures are reported as *ParseError values carrying line and
// column. Use Code to map any returned error to a stable ErrorCode.
package rdf
