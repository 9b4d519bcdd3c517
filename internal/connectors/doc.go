// Package connectors turns source references into document sources.
//
// A reference names where documents live:
//
//	dir:/data/manuals        local directory or single file (also a bare path)
//	github:owner/repo@main   repository tree at a ref
//	gdrive:<folder id>       Google Drive folder
//
// Each kind is implemented in its own subpackage. Open resolves a reference
// with credentials from domain.SourceSettings.
package connectors
