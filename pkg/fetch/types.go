package fetch

import (
	"github.com/nagelea/keysentry/pkg/errors"
)

type (

	// SourceRef points at one file surfaced by a code-search hit
	SourceRef struct {
		RepoOwner string
		RepoName  string
		Path      string
		Language  string
		HTMLURL   string

		// Size as reported by the search index, bytes; zero when unknown
		Size int
	}

	// Content is the scannable text of a fetched file
	Content struct {
		Ref  *SourceRef
		Text string
	}
)

var (
	// The referenced file disappeared or went private since indexing
	ErrNotFound = errors.New("content not found")

	// The file exceeds the fetch size ceiling and was not downloaded
	ErrTooLarge = errors.New("content too large")

	// The host applied secondary rate limiting; the batch must cool down
	ErrRateLimited = errors.New("host rate limited")
)

func (r *SourceRef) RepoFullName() string {
	return r.RepoOwner + "/" + r.RepoName
}
