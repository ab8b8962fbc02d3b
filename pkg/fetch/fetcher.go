package fetch

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/logg"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v29/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
)

const (
	perPage = 100

	// DefaultMaxContentSize bounds what we will pull from the host. Larger
	// files are overwhelmingly generated or binary blobs.
	DefaultMaxContentSize = 1 << 20
)

type Fetcher struct {
	client  *github.Client
	maxSize int
	log     logg.Logg
}

// NewClient builds the host client with the full transport stack:
// response cache, secondary-rate-limit middleware, then token auth.
func NewClient(githubToken string) *github.Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimited := github_ratelimit.NewClient(cacheTransport)

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, rateLimited)
	tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: githubToken}))

	return github.NewClient(tc)
}

func New(client *github.Client, maxSize int, log logg.Logg) *Fetcher {
	if maxSize <= 0 {
		maxSize = DefaultMaxContentSize
	}
	return &Fetcher{
		client:  client,
		maxSize: maxSize,
		log:     log,
	}
}

// SearchCode runs one page of a code-search query and returns refs plus the
// next page number, zero when exhausted.
func (f *Fetcher) SearchCode(ctx context.Context, query string, page int) (result []*SourceRef, nextPage int, err error) {
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: perPage, Page: page},
	}

	var res *github.CodeSearchResult
	var resp *github.Response
	res, resp, err = f.client.Search.Code(ctx, query, opts)
	if err != nil {
		err = f.convertHostError(err, "code search failed", query)
		return
	}

	for _, hit := range res.CodeResults {
		repo := hit.GetRepository()
		result = append(result, &SourceRef{
			RepoOwner: repo.GetOwner().GetLogin(),
			RepoName:  repo.GetName(),
			Path:      hit.GetPath(),
			Language:  repo.GetLanguage(),
			HTMLURL:   hit.GetHTMLURL(),
		})
	}
	nextPage = resp.NextPage

	return
}

// Fetch retrieves the scannable text for a ref. Notebook documents are
// flattened into one linear buffer, source and outputs both.
func (f *Fetcher) Fetch(ctx context.Context, ref *SourceRef) (result *Content, err error) {
	if ref.Size == 0 {
		f.probeSize(ctx, ref)
	}
	if ref.Size > f.maxSize {
		err = errors.WithMessagev(ErrTooLarge, "skipping oversize file", ref.Path, ref.Size)
		return
	}

	fileContent, _, _, err := f.client.Repositories.GetContents(
		ctx, ref.RepoOwner, ref.RepoName, ref.Path, nil)
	if err != nil {
		err = f.convertHostError(err, "unable to get contents", ref.RepoFullName(), ref.Path)
		return
	}
	if fileContent == nil {
		err = errors.WithMessagev(ErrNotFound, "path is a directory", ref.Path)
		return
	}

	if fileContent.GetSize() > f.maxSize {
		err = errors.WithMessagev(ErrTooLarge, "skipping oversize file", ref.Path, fileContent.GetSize())
		return
	}

	var text string
	text, err = fileContent.GetContent()
	if err != nil {
		err = errors.Wrapv(err, "unable to decode contents", ref.Path)
		return
	}

	if strings.HasSuffix(ref.Path, ".ipynb") {
		flattened, nbErr := FlattenNotebook([]byte(text))
		if nbErr != nil {
			// Malformed notebooks are scanned as raw JSON text
			f.log.WithError(nbErr).WithField("path", ref.Path).
				Debug("unable to parse notebook, scanning raw text")
		} else {
			text = flattened
		}
	}

	result = &Content{Ref: ref, Text: text}

	return
}

// probeSize fills ref.Size from the parent directory listing, which carries
// entry sizes without any file content. Search hits do not report size, so
// without this an oversize file would only be recognized after the full
// transfer. Best effort: an unlisted file stays size-unknown and the
// post-download size check still applies.
func (f *Fetcher) probeSize(ctx context.Context, ref *SourceRef) {
	dir := path.Dir(ref.Path)
	if dir == "." {
		dir = ""
	}

	_, entries, _, err := f.client.Repositories.GetContents(
		ctx, ref.RepoOwner, ref.RepoName, dir, nil)
	if err != nil {
		f.log.WithError(err).WithField("path", ref.Path).Debug("unable to probe file size")
		return
	}

	for _, entry := range entries {
		if entry.GetPath() == ref.Path {
			ref.Size = entry.GetSize()
			return
		}
	}
}

func (f *Fetcher) convertHostError(err error, message string, arg0 interface{}, args ...interface{}) error {
	switch typed := err.(type) {
	case *github.RateLimitError:
		return errors.WithMessagev(ErrRateLimited, message, arg0, args...)
	case *github.AbuseRateLimitError:
		return errors.WithMessagev(ErrRateLimited, message, arg0, args...)
	case *github.ErrorResponse:
		if typed.Response != nil {
			switch typed.Response.StatusCode {
			case http.StatusNotFound, http.StatusForbidden:
				return errors.WithMessagev(ErrNotFound, message, arg0, args...)
			}
		}
	}
	return errors.WithMessagev(err, message, arg0, args...)
}
