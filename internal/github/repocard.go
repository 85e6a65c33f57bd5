package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

// RepoCard is the repository summary shown next to generated Q&A.
type RepoCard struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description,omitempty"`
	HTMLURL       string `json:"html_url"`
	Language      string `json:"language,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	OpenIssues    int    `json:"open_issues"`
}

// RepoLookup fetches repository metadata through the GitHub REST API.
type RepoLookup struct {
	client *gh.Client
}

// NewRepoLookup creates a lookup. token may be empty for anonymous access.
// httpClient may be nil.
func NewRepoLookup(httpClient *http.Client, token string) *RepoLookup {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &RepoLookup{client: client}
}

// WithBaseURL points the lookup at another API root, such as GitHub
// Enterprise or a test server.
func (l *RepoLookup) WithBaseURL(base string) (*RepoLookup, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
	}
	l.client.BaseURL = u
	return l, nil
}

// Lookup returns the card for owner/repo.
func (l *RepoLookup) Lookup(ctx context.Context, owner, repo string) (*RepoCard, error) {
	r, _, err := l.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return &RepoCard{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		HTMLURL:       r.GetHTMLURL(),
		Language:      r.GetLanguage(),
		DefaultBranch: r.GetDefaultBranch(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
	}, nil
}
