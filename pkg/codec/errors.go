package codec

import (
	"errors"
	"fmt"
)

// ErrMultipleDocuments reports a stream holding more than one YAML document.
// The format is strictly one tree per document, one document per stream.
var ErrMultipleDocuments = errors.New("stream contains more than one yaml document")

// SchemaError reports a structural problem in the textual form: a missing or
// mistyped key, an empty collection, a malformed link entry.
type SchemaError struct {
	Node   string // node id the problem belongs to; empty for top-level problems
	Reason string
	Line   int // 1-based line in the source, 0 when unknown
}

func (e *SchemaError) Error() string {
	msg := e.Reason
	if e.Node != "" {
		msg = fmt.Sprintf("node %q: %s", e.Node, e.Reason)
	}
	if e.Line > 0 {
		return fmt.Sprintf("yaml schema: line %d: %s", e.Line, msg)
	}
	return "yaml schema: " + msg
}
