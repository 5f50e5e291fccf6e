// Package normalisers provides text extraction for the document formats
// papers arrive in. Each extractor knows how to turn one file format
// into plain text; the registry dispatches on file extension.
//
// Extractors are registered with the Registry at startup.
package normalisers
