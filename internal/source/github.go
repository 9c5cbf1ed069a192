package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

// GitHubFetcher loads course documents from a directory in a GitHub
// repository, so a shared course corpus can be ingested without cloning.
type GitHubFetcher struct {
	client   *github.Client
	owner    string
	repo     string
	basePath string
}

// NewGitHubFetcher creates a fetcher for owner/repo rooted at basePath.
// Rate limiting is handled transparently; if GITHUB_TOKEN is set the
// client authenticates for higher limits.
func NewGitHubFetcher(owner, repo, basePath string) (*GitHubFetcher, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, fmt.Errorf("create rate limiter: %w", err)
	}

	ghClient := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghClient = ghClient.WithAuthToken(token)
	}

	return &GitHubFetcher{
		client:   ghClient,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}, nil
}

// Fetch lists the base directory (recursively) and downloads every
// supported course file, sorted by path.
func (f *GitHubFetcher) Fetch(ctx context.Context) ([]File, error) {
	paths, err := f.listRecursive(ctx, f.basePath, "")
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(paths))
	for _, relPath := range paths {
		content, err := f.fetchFile(ctx, relPath)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: relPath, Content: content})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (f *GitHubFetcher) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	var found []string

	_, dirContents, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list contents of %s: %w", fullPath, err)
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}
		itemRelPath := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if supported(*item.Name) {
				found = append(found, itemRelPath)
			}
		case "dir":
			sub, err := f.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRelPath)
			if err != nil {
				return nil, err
			}
			found = append(found, sub...)
		}
	}

	return found, nil
}

func (f *GitHubFetcher) fetchFile(ctx context.Context, relativePath string) (string, error) {
	fullPath := path.Join(f.basePath, relativePath)

	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return "", fmt.Errorf("get content of %s: %w", fullPath, err)
	}
	if fileContent == nil || fileContent.Content == nil {
		return "", fmt.Errorf("no file content returned for %s", fullPath)
	}

	decoded, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return "", fmt.Errorf("decode content of %s: %w", fullPath, err)
	}
	return string(decoded), nil
}
