package extract

import (
	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/fetch"
)

// Candidate is an in-memory, unconfirmed potential secret. It lives only
// between extraction and classification; nothing persists it as-is.
type Candidate struct {
	Value      string
	KeyType    catalog.KeyType
	Confidence catalog.Confidence
	Ref        *fetch.SourceRef
	Offset     int

	ContextBefore string
	ContextAfter  string

	// The full source line the value sits on, used by the comment screen
	Line string
}

// Window returns the whole context window including the value itself
func (c *Candidate) Window() string {
	return c.ContextBefore + c.Value + c.ContextAfter
}
