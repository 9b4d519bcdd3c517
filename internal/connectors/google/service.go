package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// Credentials selects how Google API clients authenticate. The first
// populated method wins: refresh token, then access token, then a
// service account file.
type Credentials struct {
	// ClientID and ClientSecret identify the OAuth client that issued
	// RefreshToken.
	ClientID     string
	ClientSecret string

	// RefreshToken is a long-lived token obtained through "ragapp auth gdrive".
	RefreshToken string

	// AccessToken is an OAuth2 access token with the drive.readonly scope.
	AccessToken string

	// CredentialsFile is the path to a service account JSON key.
	CredentialsFile string
}

// OAuthConfig returns the OAuth2 client configuration for Drive read access.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       []string{drive.DriveReadonlyScope},
	}
}

// ClientOptions converts credentials into API client options.
func (c Credentials) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	switch {
	case c.RefreshToken != "":
		if c.ClientID == "" {
			return nil, fmt.Errorf("%w: google drive refresh token needs a client id", domain.ErrConfiguration)
		}
		ts := OAuthConfig(c.ClientID, c.ClientSecret).TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	case c.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.AccessToken,
			TokenType:   "Bearer",
		})
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	case c.CredentialsFile != "":
		return []option.ClientOption{
			option.WithCredentialsFile(c.CredentialsFile), //nolint:staticcheck // service account keys are user supplied
			option.WithScopes(drive.DriveReadonlyScope),
		}, nil
	default:
		return nil, fmt.Errorf("%w: google drive needs a refresh token, an access token or a credentials file", domain.ErrConfiguration)
	}
}

// NewDriveService creates a Google Drive API service.
// Extra options are appended after the credential options.
func NewDriveService(ctx context.Context, creds Credentials, extra ...option.ClientOption) (*drive.Service, error) {
	opts, err := creds.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}
