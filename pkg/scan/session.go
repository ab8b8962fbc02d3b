package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/nagelea/keysentry/pkg/classify"
)

// Session is the record of one scan run. Counters are owned by the run
// loop and only handed out once the run is over.
type Session struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	QueriesRun      int
	QueriesFailed   int
	PagesSearched   int
	FilesScanned    int
	FilesSkipped    int
	FilesOversize   int
	CandidatesFound int
	Rejected        int
	Duplicates      int
	Stored          int

	RejectedByReason map[classify.Reason]int
}

func newSession() *Session {
	return &Session{
		ID:               uuid.NewString(),
		StartedAt:        time.Now().UTC(),
		RejectedByReason: map[classify.Reason]int{},
	}
}

func (s *Session) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
