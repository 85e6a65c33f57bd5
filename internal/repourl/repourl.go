// Package repourl validates and splits GitHub repository URLs.
package repourl

import (
	"fmt"
	"regexp"
	"strings"
)

// repoPattern accepts scheme://[www.]github.com/<owner>/<repo>[/] and nothing else.
// Segments exclude every Unicode space separator, vertical tab and BOM as well
// as ASCII whitespace.
var repoPattern = regexp.MustCompile(`(?i)^https?://(www\.)?github\.com/([^/\s\v\p{Z}\x{FEFF}]+)/([^/\s\v\p{Z}\x{FEFF}#?]+)/?$`)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// FullName returns owner/name.
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// Valid reports whether s is a GitHub repository URL.
func Valid(s string) bool {
	return repoPattern.MatchString(s)
}

// Parse splits a repository URL into owner and name. A trailing ".git" on the
// name is dropped.
func Parse(s string) (Repo, error) {
	m := repoPattern.FindStringSubmatch(s)
	if m == nil {
		return Repo{}, fmt.Errorf("not a GitHub repository URL: %q", s)
	}
	return Repo{
		Owner: m[2],
		Name:  strings.TrimSuffix(m[3], ".git"),
	}, nil
}
