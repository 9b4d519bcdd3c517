// Package github provides a document source over the files of a GitHub repository.
//
// The whole tree of one ref is fetched with a single recursive tree request,
// then each file blob is downloaded. Files are filtered by glob pattern and
// extension, and anything above one megabyte is skipped.
//
// # Authentication
//
// A personal access token is optional for public repositories and required
// for private ones. Authenticated requests get 5,000 API requests per hour.
//
// # Rate Limiting
//
// Requests are throttled proactively with a token bucket and reactively
// from the X-RateLimit-* response headers.
package github
