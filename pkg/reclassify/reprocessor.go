package reclassify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/classify"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/extract"
	"github.com/nagelea/keysentry/pkg/fetch"
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/nagelea/keysentry/pkg/manip"
	"github.com/nagelea/keysentry/pkg/store"

	"github.com/otiai10/copy"
	"gopkg.in/yaml.v2"
)

const reportFilename = "reclassify.yaml"

// Reprocessor replays stored credentials through the current catalog and
// classifier. Rows whose pattern no longer matches or whose context no
// longer survives the veto sequence are removed; rows whose type or
// confidence changed are rewritten in place.
type Reprocessor struct {
	store             *store.Store
	cat               *catalog.Catalog
	classifier        *classify.Classifier
	reportDir         string
	reportArchivesDir string
	log               logg.Logg
}

func New(st *store.Store, cat *catalog.Catalog, reportDir, reportArchivesDir string, log logg.Logg) *Reprocessor {
	return &Reprocessor{
		store:             st,
		cat:               cat,
		classifier:        classify.NewClassifier(cat, log),
		reportDir:         reportDir,
		reportArchivesDir: reportArchivesDir,
		log:               log,
	}
}

// Run reprocesses every stored credential matching the filter. Running it
// twice with the same catalog changes nothing the second time.
func (r *Reprocessor) Run(ctx context.Context, filter *store.Filter) (result *Report, err error) {
	creds, err := r.store.FetchWithSensitive(ctx, filter)
	if err != nil {
		err = errors.WithMessage(err, "unable to fetch credentials for reprocessing")
		return
	}

	result = &Report{RanAt: time.Now().UTC(), Examined: len(creds), Reasons: map[string]int{}}

	for _, cred := range creds {
		decision := r.decide(cred)
		log := r.log.WithFields(logg.Fields{
			"credentialID": cred.Record.ID,
			"action":       decision.Action,
		})

		switch decision.Action {
		case ActionDelete.String():
			if err = r.store.Delete(ctx, cred.Record.ID); err != nil {
				err = errors.WithMessagev(err, "unable to delete reprocessed credential", cred.Record.ID)
				return
			}
			result.Deleted++
			result.Reasons[decision.Reason]++
			result.Decisions = append(result.Decisions, decision)
			log.WithField("reason", decision.Reason).Info("credential removed")

		case ActionReclassify.String():
			newConfidence := catalog.NewConfidenceFromValue(decision.NewConfidence)
			if err = r.store.Reclassify(ctx, cred.Record.ID, decision.NewType, newConfidence); err != nil {
				err = errors.WithMessagev(err, "unable to reclassify credential", cred.Record.ID)
				return
			}
			result.Reclassified++
			result.Decisions = append(result.Decisions, decision)
			log.WithField("newType", decision.NewType).Info("credential reclassified")

		default:
			result.Kept++
			log.Trace("credential kept")
		}
	}

	if err = r.writeReport(result); err != nil {
		return
	}

	return
}

// decide replays one stored credential through extraction and the veto
// sequence using its stored raw context
func (r *Reprocessor) decide(cred *store.StoredCredential) *Decision {
	decision := &Decision{
		CredentialID:  cred.Record.ID,
		RepoName:      cred.Record.RepoName,
		FilePath:      cred.Record.FilePath,
		Context:       contextExcerpt(cred.Payload.RawContext, cred.Payload.SecretValue),
		OldType:       cred.Record.KeyType,
		OldConfidence: cred.Record.Confidence.String(),
	}

	owner, name := splitRepoName(cred.Record.RepoName)
	content := &fetch.Content{
		Ref: &fetch.SourceRef{
			RepoOwner: owner,
			RepoName:  name,
			Path:      cred.Record.FilePath,
			Language:  cred.Record.Language,
		},
		Text: cred.Payload.RawContext,
	}

	candidate := findStoredValue(extract.Extract(content, r.cat, catalog.ModeFull), cred.Payload.SecretValue)
	if candidate == nil {
		decision.Action = ActionDelete.String()
		decision.Reason = "pattern no longer matches stored value"
		return decision
	}

	verdict := r.classifier.Classify(candidate)
	if !verdict.Accepted {
		decision.Action = ActionDelete.String()
		decision.Reason = verdict.Reason.String()
		return decision
	}

	if verdict.KeyType != cred.Record.KeyType || verdict.Confidence != cred.Record.Confidence {
		decision.Action = ActionReclassify.String()
		decision.NewType = verdict.KeyType
		decision.NewConfidence = verdict.Confidence.String()
		return decision
	}

	decision.Action = ActionKeep.String()
	return decision
}

func (r *Reprocessor) writeReport(report *Report) (err error) {
	if r.reportDir == "" {
		return
	}
	if err = os.MkdirAll(r.reportDir, 0700); err != nil {
		err = errors.Wrapv(err, "unable to create report directory", r.reportDir)
		return
	}

	raw, err := yaml.Marshal(report)
	if err != nil {
		err = errors.Wrap(err, "unable to marshal reprocessing report")
		return
	}

	reportPath := filepath.Join(r.reportDir, reportFilename)
	if err = os.WriteFile(reportPath, raw, 0600); err != nil {
		err = errors.Wrapv(err, "unable to write reprocessing report", reportPath)
		return
	}

	if r.reportArchivesDir == "" {
		return
	}
	if err = os.MkdirAll(r.reportArchivesDir, 0700); err != nil {
		err = errors.Wrapv(err, "unable to create report archives directory", r.reportArchivesDir)
		return
	}

	archiveDirname := fmt.Sprintf("reclassify-%s", report.RanAt.Format("2006-01-02_15-04-05"))
	archiveDir := filepath.Join(r.reportArchivesDir, archiveDirname)
	if err = copy.Copy(r.reportDir, archiveDir); err != nil {
		err = errors.Wrapv(err, "unable to archive report", r.reportDir, archiveDir)
		return
	}

	return
}

const contextExcerptLimit = 120

// contextExcerpt renders the stored context as a bounded single line with
// the secret masked, so the report never carries the live value
func contextExcerpt(rawContext, secret string) string {
	masked := strings.ReplaceAll(rawContext, secret, manip.MaskValue(secret, store.MaskedPreviewKeep))
	return manip.TruncateString(manip.MakeOneLine(strings.TrimSpace(masked), " "), contextExcerptLimit)
}

func findStoredValue(candidates []*extract.Candidate, secretValue string) *extract.Candidate {
	for _, candidate := range candidates {
		if candidate.Value == secretValue {
			return candidate
		}
	}
	return nil
}

func splitRepoName(full string) (owner string, name string) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", full
}
