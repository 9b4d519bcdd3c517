package github

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"strings"

	gh "github.com/google/go-github/v80/github"
)

// decodeBlob returns blob content as bytes. The API sends base64 wrapped
// at 60 columns, or utf-8 for small text blobs.
func decodeBlob(blob *gh.Blob) ([]byte, error) {
	switch enc := blob.GetEncoding(); enc {
	case "base64":
		return base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.GetContent(), "\n", ""))
	case "utf-8", "":
		return []byte(blob.GetContent()), nil
	default:
		return nil, fmt.Errorf("blob %s: unknown encoding %q", blob.GetSHA(), enc)
	}
}

// sniffLen matches the window git inspects when deciding a file is binary.
const sniffLen = 8000

// looksBinary reports a NUL byte near the start of content.
func looksBinary(content []byte) bool {
	return bytes.IndexByte(content[:min(len(content), sniffLen)], 0) >= 0
}

// textTypes covers extensions the mime registry misses or gets wrong for
// source trees (.ts would otherwise be video/mp2t).
var textTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".rst":      "text/plain",
	".txt":      "text/plain",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".ts":       "text/typescript",
	".tsx":      "text/typescript-jsx",
	".jsx":      "text/javascript-jsx",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".eml":      "message/rfc822",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// detectFileMIMEType guesses a media type from the extension of a
// repository path, without parameters. Unknown files are plain text.
func detectFileMIMEType(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if t, ok := textTypes[ext]; ok {
		return t
	}
	if ext != "" {
		if mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil {
			return mt
		}
	}
	return "text/plain"
}

// matchesPatterns reports whether p matches any glob. Patterns with a
// slash match the whole repository path, others the file name.
// No patterns matches everything.
func matchesPatterns(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		subject := path.Base(p)
		if strings.Contains(pattern, "/") {
			subject = p
		}
		if ok, err := path.Match(pattern, subject); err == nil && ok {
			return true
		}
	}
	return false
}

// binaryExts are skipped before download. PDF and DOCX are absent on
// purpose: both have extractors.
var binaryExts = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
	".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".bin": true, ".dat": true, ".db": true, ".sqlite": true,
	".pyc": true, ".pyo": true, ".class": true, ".o": true, ".a": true,
}

func isBinaryExtension(p string) bool {
	return binaryExts[strings.ToLower(path.Ext(p))]
}
