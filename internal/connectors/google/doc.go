// Package google provides shared infrastructure for Google API sources.
//
// It contains:
//   - Service factories that authenticate with a stored refresh token, a
//     static OAuth access token or a service account key file
//   - OAuthConfig, shared with the "auth gdrive" login flow
//   - Error mapping for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # OAuth2 Scopes
//
// Sources request https://www.googleapis.com/auth/drive.readonly only.
package google
