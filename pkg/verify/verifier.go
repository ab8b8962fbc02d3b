package verify

import (
	"context"
	"net/http"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/nagelea/keysentry/pkg/manip"
	"github.com/nagelea/keysentry/pkg/pace"
	"github.com/nagelea/keysentry/pkg/store"

	"github.com/sirsean/go-pool"
)

const (
	DefaultProbeTimeout  = 15 * time.Second
	DefaultProbeInterval = 2 * time.Second
)

// ErrProbeTransient marks provider responses that say nothing about the
// credential itself. The stored status is left untouched.
var ErrProbeTransient = errors.New("transient probe failure")

type Verifier struct {
	client      *http.Client
	probes      *ProbeSet
	store       *store.Store
	interval    time.Duration
	workerCount int
	clock       pace.Clock
	log         logg.Logg
}

type Summary struct {
	Checked     int
	Valid       int
	Invalid     int
	Unsupported int
	Transient   int
}

func NewVerifier(client *http.Client, probes *ProbeSet, st *store.Store, interval time.Duration, workerCount int, log logg.Logg) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: DefaultProbeTimeout}
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return &Verifier{
		client:      client,
		probes:      probes,
		store:       st,
		interval:    interval,
		workerCount: workerCount,
		clock:       pace.SystemClock(),
		log:         log,
	}
}

// Check probes a single secret. A nil error with OutcomeUnsupported means
// the provider cannot be tested; transient failures wrap ErrProbeTransient.
func (v *Verifier) Check(ctx context.Context, keyType catalog.KeyType, secret string) (result Outcome, err error) {
	probe, ok := v.probes.Lookup(keyType)
	if !ok {
		result = OutcomeUnsupported
		return
	}

	req, err := probe.NewRequest(ctx, secret)
	if err != nil {
		return
	}

	resp, err := v.client.Do(req)
	if err != nil {
		err = errors.WithMessagev(ErrProbeTransient, "probe request failed", keyType, err.Error())
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result = OutcomeValid
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		result = OutcomeInvalid
	default:
		err = errors.WithMessagev(ErrProbeTransient, "unexpected probe status", keyType, resp.StatusCode)
	}
	return
}

// VerifyAll probes every unverified credential and records definitive
// outcomes. Credentials sharing a provider host are probed sequentially
// under one pacer; distinct hosts run in parallel.
func (v *Verifier) VerifyAll(ctx context.Context, limit int) (result *Summary, err error) {
	creds, err := v.store.FetchUnverified(ctx, limit)
	if err != nil {
		err = errors.WithMessage(err, "unable to fetch unverified credentials")
		return
	}

	result = &Summary{}
	if len(creds) == 0 {
		return
	}

	batches := map[string][]*store.StoredCredential{}
	for _, cred := range creds {
		probe, ok := v.probes.Lookup(cred.Record.KeyType)
		if !ok {
			result.Unsupported++
			v.log.WithField("keyType", cred.Record.KeyType).
				Debug("no probe for key type, leaving status untouched")
			continue
		}
		batches[probe.Host()] = append(batches[probe.Host()], cred)
	}
	if len(batches) == 0 {
		return
	}

	out := make(chan *probeResult, len(creds))

	p := pool.NewPool(len(batches), v.workerCount)
	p.Start()
	for host, batch := range batches {
		p.Add(newProviderWorker(v, batch, out, v.log.WithField("host", host)))
	}
	p.Close()
	close(out)

	now := v.clock.Now().UTC()
	for probed := range out {
		result.Checked++

		log := v.log.WithFields(logg.Fields{
			"credentialID": probed.id,
			"keyType":      probed.keyType,
		})

		if probed.err != nil {
			result.Transient++
			errors.ErrLog(log, probed.err).Warn("probe inconclusive, status unchanged")
			continue
		}

		var status store.Status
		switch probed.outcome {
		case OutcomeValid:
			result.Valid++
			status = store.StatusValid
		case OutcomeInvalid:
			result.Invalid++
			status = store.StatusInvalid
		default:
			result.Unsupported++
			continue
		}

		if updateErr := v.store.UpdateStatus(ctx, probed.id, status, now); updateErr != nil {
			errors.ErrLog(log, updateErr).Error("unable to record probe outcome")
			continue
		}
		log.WithField("outcome", probed.outcome.String()).Info("credential probed")
	}

	return
}

type probeResult struct {
	id      string
	keyType catalog.KeyType
	outcome Outcome
	err     error
}

// providerWorker probes one host's batch sequentially under a shared pacer
type providerWorker struct {
	verifier *Verifier
	batch    []*store.StoredCredential
	pacer    *pace.Pacer
	out      chan *probeResult
	log      logg.Logg
}

func newProviderWorker(v *Verifier, batch []*store.StoredCredential, out chan *probeResult, log logg.Logg) providerWorker {
	return providerWorker{
		verifier: v,
		batch:    batch,
		pacer:    pace.NewPacer(v.interval, 1, v.clock),
		out:      out,
		log:      log,
	}
}

func (w providerWorker) Perform() {
	defer errors.CatchPanicAndLogError(w.log, "panic during credential verification")

	ctx := context.Background()
	for _, cred := range w.batch {
		if err := w.pacer.Wait(ctx); err != nil {
			return
		}

		w.log.WithField("value", manip.MaskValue(cred.Payload.SecretValue, 4)).Trace("probing credential")

		outcome, err := w.verifier.Check(ctx, cred.Record.KeyType, cred.Payload.SecretValue)
		w.out <- &probeResult{
			id:      cred.Record.ID,
			keyType: cred.Record.KeyType,
			outcome: outcome,
			err:     err,
		}
	}
}
