package reclassify

import (
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
)

type Action int

const (
	ActionKeep Action = iota
	ActionReclassify
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionReclassify:
		return "reclassify"
	case ActionDelete:
		return "delete"
	default:
		return "keep"
	}
}

// Decision records what the current catalog says about one stored
// credential. Kept rows appear in the report only when something changed.
type Decision struct {
	CredentialID string `yaml:"credentialID"`
	RepoName     string `yaml:"repoName"`
	FilePath     string `yaml:"filePath"`
	Action       string `yaml:"action"`
	Reason       string `yaml:"reason,omitempty"`

	// One-line excerpt of the stored context, for operator review
	Context string `yaml:"context,omitempty"`

	OldType       catalog.KeyType `yaml:"oldType"`
	NewType       catalog.KeyType `yaml:"newType,omitempty"`
	OldConfidence string          `yaml:"oldConfidence"`
	NewConfidence string          `yaml:"newConfidence,omitempty"`
}

// Report is the audit trail for one reprocessing run
type Report struct {
	RanAt        time.Time      `yaml:"ranAt"`
	Examined     int            `yaml:"examined"`
	Kept         int            `yaml:"kept"`
	Reclassified int            `yaml:"reclassified"`
	Deleted      int            `yaml:"deleted"`
	Reasons      map[string]int `yaml:"reasons,omitempty"`
	Decisions    []*Decision    `yaml:"decisions,omitempty"`
}
