package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/connectors/filesystem"
	"github.com/Hmv123/RAG-Application/internal/connectors/github"
	"github.com/Hmv123/RAG-Application/internal/connectors/google"
	"github.com/Hmv123/RAG-Application/internal/connectors/google/drive"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Source kinds.
const (
	KindDir    = "dir"
	KindGitHub = "github"
	KindDrive  = "gdrive"
)

// Kinds lists the supported reference prefixes.
func Kinds() []string {
	return []string{KindDir, KindGitHub, KindDrive}
}

// Options adjusts how sources are built.
type Options struct {
	// Accept restricts files by name, typically to extractable ones.
	Accept func(name string) bool

	// GitHubRPS overrides the GitHub request rate. Zero uses the default.
	GitHubRPS float64
}

// ParseRef splits a reference into its kind and target.
// References without a known prefix are directory paths.
func ParseRef(ref string) (kind, target string, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", fmt.Errorf("%w: empty source reference", domain.ErrInvalidInput)
	}

	if k, rest, ok := strings.Cut(ref, ":"); ok {
		switch k {
		case KindDir, KindGitHub, KindDrive:
			if rest == "" {
				return "", "", fmt.Errorf("%w: %s source needs a target", domain.ErrInvalidInput, k)
			}
			return k, rest, nil
		}
	}
	return KindDir, ref, nil
}

// Open builds the document source a reference names.
func Open(ctx context.Context, ref string, creds domain.SourceSettings, opts Options) (driven.DocumentSource, error) {
	kind, target, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindGitHub:
		owner, repo, gitRef, err := github.ParseRepo(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		client := github.NewClient(creds.GitHubToken, opts.GitHubRPS)
		return github.New(client, github.Config{
			Owner:  owner,
			Repo:   repo,
			Ref:    gitRef,
			Accept: opts.Accept,
		}), nil

	case KindDrive:
		svc, err := google.NewDriveService(ctx, google.Credentials{
			ClientID:        creds.DriveClientID,
			ClientSecret:    creds.DriveClientSecret,
			RefreshToken:    creds.DriveRefreshToken,
			AccessToken:     creds.DriveToken,
			CredentialsFile: creds.DriveCredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		return drive.New(svc, drive.Config{FolderID: target, Accept: opts.Accept}, nil), nil

	default:
		var fsOpts []filesystem.Option
		if opts.Accept != nil {
			fsOpts = append(fsOpts, filesystem.WithFilter(opts.Accept))
		}
		return filesystem.New(target, fsOpts...), nil
	}
}
