// Package extractors turns document blobs into plain text.
//
// Each sub-package implements driven.Extractor for one family of formats.
// The Registry in this package dispatches a document to the extractor
// that handles its MIME type or file extension.
package extractors
