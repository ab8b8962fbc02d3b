package scan

import (
	"context"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/classify"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/extract"
	"github.com/nagelea/keysentry/pkg/fetch"
	"github.com/nagelea/keysentry/pkg/interact"
	"github.com/nagelea/keysentry/pkg/interact/progress"
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/nagelea/keysentry/pkg/pace"
	"github.com/nagelea/keysentry/pkg/stats"
	"github.com/nagelea/keysentry/pkg/store"
)

const (
	DefaultMaxPages        = 10
	DefaultSearchInterval  = 6 * time.Second
	DefaultFetchInterval   = 500 * time.Millisecond
	DefaultCoolDownPenalty = time.Minute
)

type Options struct {
	Mode            catalog.ScanMode
	MaxPages        int
	SearchInterval  time.Duration
	FetchInterval   time.Duration
	CoolDownPenalty time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.SearchInterval <= 0 {
		o.SearchInterval = DefaultSearchInterval
	}
	if o.FetchInterval <= 0 {
		o.FetchInterval = DefaultFetchInterval
	}
	if o.CoolDownPenalty <= 0 {
		o.CoolDownPenalty = DefaultCoolDownPenalty
	}
}

// Scanner drives the discovery pipeline: search, fetch, extract, classify,
// dedupe, store. One run walks every catalog query in sequence.
type Scanner struct {
	fetcher     *fetch.Fetcher
	cat         *catalog.Catalog
	classifier  *classify.Classifier
	store       *store.Store
	stats       *stats.Stats
	interact    interact.Interactish
	opts        Options
	searchPacer *pace.Pacer
	fetchPacer  *pace.Pacer
	log         logg.Logg
}

func NewScanner(fetcher *fetch.Fetcher, cat *catalog.Catalog, st *store.Store, sts *stats.Stats, inter interact.Interactish, opts Options, log logg.Logg) *Scanner {
	opts.applyDefaults()
	return &Scanner{
		fetcher:     fetcher,
		cat:         cat,
		classifier:  classify.NewClassifier(cat, log),
		store:       st,
		stats:       sts,
		interact:    inter,
		opts:        opts,
		searchPacer: pace.NewPacer(opts.SearchInterval, 1, nil),
		fetchPacer:  pace.NewPacer(opts.FetchInterval, 2, nil),
		log:         log,
	}
}

// Run walks every search query of the active catalog and returns the
// session record. A context cancellation ends the run with whatever was
// stored so far.
func (s *Scanner) Run(ctx context.Context) (result *Session, err error) {
	session := newSession()
	defer func() {
		session.FinishedAt = time.Now().UTC()
		result = session
	}()

	queries := s.cat.SearchQueries(s.opts.Mode)
	s.log.WithFields(logg.Fields{
		"session": session.ID,
		"queries": len(queries),
		"mode":    s.opts.Mode.String(),
	}).Info("starting scan")

	prog := s.interact.NewProgress()
	var bar *progress.Bar
	if prog != nil {
		bar = prog.AddBar("scanning queries", len(queries), "%d / %d", "scanned %s", s.log)
		bar.Start()
	}

	for _, query := range queries {
		qErr := s.runQuery(ctx, query, session)
		if qErr != nil {
			// Only an exhausted rate-limit budget or a cancellation ends
			// the run; any other query failure skips to the next query.
			if ctx.Err() != nil || errors.Is(qErr, fetch.ErrRateLimited) {
				err = qErr
				break
			}
			errors.ErrLog(s.log.WithField("query", query), qErr).Warn("query failed, skipping")
			session.QueriesFailed++
		} else {
			session.QueriesRun++
		}
		if bar != nil {
			bar.Incr()
		}
	}

	if bar != nil {
		bar.Finished("")
	}
	if prog != nil {
		prog.Wait()
	}

	s.log.WithFields(logg.Fields{
		"session": session.ID,
		"stored":  session.Stored,
	}).Info("scan finished")

	return
}

func (s *Scanner) runQuery(ctx context.Context, query string, session *Session) (err error) {
	log := s.log.WithField("query", query)

	queryStart := time.Now()
	defer func() {
		s.stats.QueryDurations.SubmitAggregatedDuration(time.Since(queryStart), query)
	}()

	page := 1
	pages := 0
	retried := false
	for page != 0 && pages < s.opts.MaxPages {
		if err = s.searchPacer.Wait(ctx); err != nil {
			return
		}

		var refs []*fetch.SourceRef
		var nextPage int
		refs, nextPage, err = s.fetcher.SearchCode(ctx, query, page)
		if err != nil {
			if errors.Is(err, fetch.ErrRateLimited) && !retried {
				log.Warn("search rate limited, cooling down")
				s.searchPacer.CoolDown(s.opts.CoolDownPenalty)
				retried = true
				err = nil
				continue
			}
			err = errors.WithMessagev(err, "search query failed", query, page)
			return
		}
		retried = false
		pages++
		session.PagesSearched++

		for _, ref := range refs {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = errors.Wrap(ctxErr, "scan interrupted")
				return
			}
			s.scanFile(ctx, ref, session, log)
		}

		page = nextPage
	}

	return
}

// scanFile runs one file through the pipeline. Per-file failures are
// logged and counted, never fatal to the run.
func (s *Scanner) scanFile(ctx context.Context, ref *fetch.SourceRef, session *Session, log logg.Logg) {
	log = log.WithField("file", ref.RepoFullName()+"/"+ref.Path)

	if err := s.fetchPacer.Wait(ctx); err != nil {
		return
	}

	fileStart := time.Now()
	content, err := s.fetcher.Fetch(ctx, ref)
	if err != nil {
		session.FilesSkipped++
		switch {
		case errors.Is(err, fetch.ErrRateLimited):
			log.Warn("fetch rate limited, cooling down")
			s.fetchPacer.CoolDown(s.opts.CoolDownPenalty)
		case errors.Is(err, fetch.ErrTooLarge):
			session.FilesOversize++
			log.Debug("skipping oversized file")
		case errors.Is(err, fetch.ErrNotFound):
			log.Debug("skipping file: ", err.Error())
		default:
			errors.ErrLog(log, err).Warn("unable to fetch file")
		}
		return
	}
	session.FilesScanned++
	s.stats.IncrFilesFetched()

	candidates := extract.Extract(content, s.cat, s.opts.Mode)
	session.CandidatesFound += len(candidates)
	s.stats.AddCandidates(len(candidates))

	for _, candidate := range candidates {
		s.processCandidate(ctx, candidate, session, log)
	}

	s.stats.FileDurations.SubmitUniqueDuration(time.Since(fileStart), ref.RepoFullName()+"/"+ref.Path)
}

func (s *Scanner) processCandidate(ctx context.Context, candidate *extract.Candidate, session *Session, log logg.Logg) {
	candidateStart := time.Now()
	defer func() {
		s.stats.KeyTypeDurations.SubmitAggregatedDuration(time.Since(candidateStart), candidate.KeyType.String())
	}()

	verdict := s.classifier.Classify(candidate)
	if !verdict.Accepted {
		session.Rejected++
		session.RejectedByReason[verdict.Reason]++
		s.stats.IncrRejected()
		return
	}

	hash := store.HashValue(candidate.Value)
	seen, err := s.store.Seen(ctx, hash)
	if err != nil {
		errors.ErrLog(log, err).Error("unable to check for duplicate")
		return
	}
	if seen {
		session.Duplicates++
		s.stats.IncrDuplicates()
		return
	}

	record := &store.CredentialRecord{
		KeyType:     verdict.KeyType,
		ContentHash: hash,
		Confidence:  verdict.Confidence,
		Severity:    verdict.Severity,
		RepoName:    candidate.Ref.RepoFullName(),
		FilePath:    candidate.Ref.Path,
		Language:    candidate.Ref.Language,
		SourceType:  "github",
	}
	payload := &store.SensitivePayload{
		SecretValue: candidate.Value,
		RawContext:  candidate.Window(),
		SourceURL:   candidate.Ref.HTMLURL,
	}

	if _, err = s.store.Store(ctx, record, payload); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			session.Duplicates++
			s.stats.IncrDuplicates()
			return
		}
		errors.ErrLog(log, err).Error("unable to store credential")
		return
	}

	session.Stored++
	s.stats.IncrSecretsStored()
	log.WithFields(logg.Fields{
		"keyType":  verdict.KeyType,
		"severity": verdict.Severity.String(),
	}).Info("credential stored")
}
