package importer

import (
	"context"
	"os"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/classify"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/nagelea/keysentry/pkg/store"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v2"
)

type (

	// Entry is one operator-declared credential. Key type may be omitted
	// when the catalog can attribute the value on its own.
	Entry struct {
		Value     string `yaml:"value"`
		KeyType   string `yaml:"keyType,omitempty"`
		Status    string `yaml:"status,omitempty"`
		Severity  string `yaml:"severity,omitempty"`
		RepoName  string `yaml:"repoName,omitempty"`
		FilePath  string `yaml:"filePath,omitempty"`
		SourceURL string `yaml:"sourceURL,omitempty"`
		Note      string `yaml:"note,omitempty"`
	}

	Document struct {
		Credentials []*Entry `yaml:"credentials"`
	}

	Summary struct {
		Imported   int
		Duplicates int
		Skipped    int
	}

	// Importer ingests operator-declared credentials. Imports bypass the
	// context gate, because a human already vouched for the find, but the
	// fake-indicator screen and the dedup hash still apply.
	Importer struct {
		store *store.Store
		cat   *catalog.Catalog
		log   logg.Logg
	}
)

func New(st *store.Store, cat *catalog.Catalog, log logg.Logg) *Importer {
	return &Importer{store: st, cat: cat, log: log}
}

func (e *Entry) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Value, validation.Required),
		validation.Field(&e.KeyType, validation.By(validKeyTypeOrEmpty)),
		validation.Field(&e.Status, validation.By(validStatusOrEmpty)),
		validation.Field(&e.Severity, validation.By(validSeverityOrEmpty)),
	)
}

func validKeyTypeOrEmpty(value interface{}) error {
	val, _ := value.(string)
	if val == "" || catalog.ValidKeyType(val) {
		return nil
	}
	return errors.Errorv("unknown key type", val)
}

func validStatusOrEmpty(value interface{}) error {
	val, _ := value.(string)
	if val == "" || store.ValidStatus(val) {
		return nil
	}
	return errors.Errorv("unknown status", val)
}

func validSeverityOrEmpty(value interface{}) error {
	val, _ := value.(string)
	if val == "" || catalog.ValidSeverity(val) {
		return nil
	}
	return errors.Errorv("unknown severity", val)
}

func (i *Importer) ImportFile(ctx context.Context, path string) (result *Summary, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapv(err, "unable to read import file", path)
		return
	}

	var doc Document
	if err = yaml.UnmarshalStrict(raw, &doc); err != nil {
		err = errors.Wrapv(err, "unable to parse import file", path)
		return
	}

	return i.Import(ctx, &doc)
}

func (i *Importer) Import(ctx context.Context, doc *Document) (result *Summary, err error) {
	result = &Summary{}

	for n, entry := range doc.Credentials {
		if err = entry.Validate(); err != nil {
			err = errors.WithMessagev(err, "invalid import entry", n)
			return
		}

		log := i.log.WithField("entry", n)

		keyType, ok := i.attributeKeyType(entry)
		if !ok {
			result.Skipped++
			log.Warn("no catalog pattern matches the declared value, skipping")
			continue
		}
		log = log.WithField("keyType", keyType)

		if classify.LooksFake(entry.Value, "", entry.Note) {
			result.Skipped++
			log.Warn("value looks like documentation, skipping")
			continue
		}

		spec, _ := i.cat.Lookup(keyType)
		status := store.StatusUnknown
		if entry.Status != "" {
			status = store.Status(entry.Status)
		}
		severity := catalog.SeverityMedium
		if entry.Severity != "" {
			severity = catalog.NewSeverityFromValue(entry.Severity)
		}

		record := &store.CredentialRecord{
			KeyType:    keyType,
			Confidence: spec.Confidence,
			Severity:   severity,
			Status:     status,
			RepoName:   entry.RepoName,
			FilePath:   entry.FilePath,
			SourceType: "import",
		}
		payload := &store.SensitivePayload{
			SecretValue: entry.Value,
			RawContext:  entry.Note,
			SourceURL:   entry.SourceURL,
		}

		if _, err = i.store.Store(ctx, record, payload); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				result.Duplicates++
				err = nil
				log.Debug("value already stored")
				continue
			}
			err = errors.WithMessagev(err, "unable to store imported credential", n)
			return
		}

		result.Imported++
		log.Info("credential imported")
	}

	return
}

// attributeKeyType resolves the entry's key type. A declared type must
// still match its own pattern; an undeclared one takes the first catalog
// pattern that matches the full value.
func (i *Importer) attributeKeyType(entry *Entry) (result catalog.KeyType, ok bool) {
	if entry.KeyType != "" {
		spec, found := i.cat.Lookup(catalog.KeyType(entry.KeyType))
		if !found || spec.Re().FindString(entry.Value) != entry.Value {
			return
		}
		return spec.KeyType, true
	}

	for _, spec := range i.cat.AllSpecs(catalog.ModeFull) {
		if spec.Re().FindString(entry.Value) == entry.Value {
			return spec.KeyType, true
		}
	}
	return
}
