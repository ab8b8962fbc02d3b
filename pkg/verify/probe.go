package verify

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"
)

// Probe describes the read-only request used to test a credential against
// its provider. Every probe is a GET that lists models or reads account
// metadata; nothing in this table mutates provider state.
type Probe struct {
	KeyType   catalog.KeyType
	URL       string
	Authorize func(req *http.Request, secret string)
}

func bearerAuth(req *http.Request, secret string) {
	req.Header.Set("Authorization", "Bearer "+secret)
}

func builtinProbes() []*Probe {
	return []*Probe{
		{
			KeyType: catalog.Anthropic,
			URL:     "https://api.anthropic.com/v1/models",
			Authorize: func(req *http.Request, secret string) {
				req.Header.Set("x-api-key", secret)
				req.Header.Set("anthropic-version", "2023-06-01")
			},
		},
		{
			KeyType:   catalog.OpenAIProject,
			URL:       "https://api.openai.com/v1/models",
			Authorize: bearerAuth,
		},
		{
			KeyType:   catalog.OpenAILegacy,
			URL:       "https://api.openai.com/v1/models",
			Authorize: bearerAuth,
		},
		{
			KeyType: catalog.GoogleAI,
			URL:     "https://generativelanguage.googleapis.com/v1beta/models",
			Authorize: func(req *http.Request, secret string) {
				q := req.URL.Query()
				q.Set("key", secret)
				req.URL.RawQuery = q.Encode()
			},
		},
		{
			KeyType:   catalog.HuggingFace,
			URL:       "https://huggingface.co/api/whoami-v2",
			Authorize: bearerAuth,
		},
		{
			KeyType: catalog.GitHubPAT,
			URL:     "https://api.github.com/user",
			Authorize: func(req *http.Request, secret string) {
				req.Header.Set("Authorization", "token "+secret)
			},
		},
		{
			KeyType:   catalog.Groq,
			URL:       "https://api.groq.com/openai/v1/models",
			Authorize: bearerAuth,
		},
		{
			KeyType:   catalog.OpenRouter,
			URL:       "https://openrouter.ai/api/v1/models",
			Authorize: bearerAuth,
		},
	}
}

// ProbeSet maps key types to their provider probes. Key types without an
// entry cannot be verified and keep their stored status.
type ProbeSet struct {
	byType map[catalog.KeyType]*Probe
}

func NewProbeSet(probes []*Probe) (result *ProbeSet, err error) {
	byType := make(map[catalog.KeyType]*Probe, len(probes))
	for _, probe := range probes {
		if _, ok := byType[probe.KeyType]; ok {
			err = errors.Errorv("duplicate probe for key type", probe.KeyType)
			return
		}
		if _, err = url.Parse(probe.URL); err != nil {
			err = errors.Wrapv(err, "invalid probe URL", probe.KeyType)
			return
		}
		byType[probe.KeyType] = probe
	}
	result = &ProbeSet{byType: byType}
	return
}

func NewDefaultProbeSet() *ProbeSet {
	result, err := NewProbeSet(builtinProbes())
	if err != nil {
		panic(err)
	}
	return result
}

func (ps *ProbeSet) Lookup(keyType catalog.KeyType) (result *Probe, ok bool) {
	result, ok = ps.byType[keyType]
	return
}

// Host returns the pacing group for a probe, so providers sharing an API
// host also share a rate budget
func (p *Probe) Host() string {
	parsed, err := url.Parse(p.URL)
	if err != nil {
		return p.URL
	}
	return parsed.Host
}

func (p *Probe) NewRequest(ctx context.Context, secret string) (result *http.Request, err error) {
	result, err = http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		err = errors.Wrapv(err, "unable to build probe request", p.KeyType)
		return
	}
	p.Authorize(result, secret)
	return
}
