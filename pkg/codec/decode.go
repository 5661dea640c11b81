package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simbleau/convo/pkg/tree"
)

// Decode parses a single YAML document into a validated tree. Node and link
// order in the document becomes insertion order in the tree.
//
// Malformed YAML surfaces as a wrapped scan error, a second document as
// ErrMultipleDocuments, structural problems as *SchemaError, and a tree that
// parses but breaks the default validation rules as a wrapped
// *tree.MultiError.
func Decode(data []byte) (*tree.Tree, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Reason: "empty document"}
		}
		return nil, fmt.Errorf("scan yaml: %w", err)
	}

	// The format is one tree per stream; a trailing document is an error
	// whether or not it parses.
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}

	t, err := decodeDocument(&doc)
	if err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("decoded tree is invalid: %w", err)
	}
	return t, nil
}

// DecodeFile reads and decodes the dialogue file at path.
func DecodeFile(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return t, nil
}

func decodeDocument(doc *yaml.Node) (*tree.Tree, error) {
	body := doc
	if body.Kind == yaml.DocumentNode {
		if len(body.Content) == 0 {
			return nil, &SchemaError{Reason: "empty document"}
		}
		body = body.Content[0]
	}
	body = resolved(body)
	if body.Kind != yaml.MappingNode {
		return nil, &SchemaError{Reason: "document must be a mapping", Line: body.Line}
	}

	t := tree.New()

	var rootVal, nodesVal *yaml.Node
	for key, val := range mappingPairs(body) {
		switch key.Value {
		case "root":
			rootVal = resolved(val)
		case "nodes":
			nodesVal = resolved(val)
		}
		// Unknown top-level keys are ignored.
	}

	if rootVal == nil {
		return nil, &SchemaError{Reason: `missing top-level "root" key`, Line: body.Line}
	}
	if !isString(rootVal) {
		return nil, &SchemaError{Reason: `top-level "root" must be a string`, Line: rootVal.Line}
	}
	t.SetRoot(rootVal.Value)

	if nodesVal == nil {
		return nil, &SchemaError{Reason: `missing top-level "nodes" mapping`, Line: body.Line}
	}
	if nodesVal.Kind != yaml.MappingNode {
		return nil, &SchemaError{Reason: `top-level "nodes" must be a mapping`, Line: nodesVal.Line}
	}
	if len(nodesVal.Content) == 0 {
		return nil, &SchemaError{Reason: `top-level "nodes" must not be empty`, Line: nodesVal.Line}
	}

	for key, val := range mappingPairs(nodesVal) {
		if !isString(key) {
			return nil, &SchemaError{Reason: "node identifiers must be strings", Line: key.Line}
		}
		n, err := decodeNode(key.Value, resolved(val))
		if err != nil {
			return nil, err
		}
		t.AddNode(key.Value, n)
	}

	return t, nil
}

func decodeNode(id string, body *yaml.Node) (*tree.Node, error) {
	if body.Kind != yaml.MappingNode {
		return nil, &SchemaError{Node: id, Reason: "must be a mapping", Line: body.Line}
	}

	var dialogueVal, linksVal *yaml.Node
	for key, val := range mappingPairs(body) {
		switch key.Value {
		case "dialogue":
			dialogueVal = resolved(val)
		case "links":
			linksVal = resolved(val)
		}
	}

	if dialogueVal == nil {
		return nil, &SchemaError{Node: id, Reason: `missing "dialogue"`, Line: body.Line}
	}
	if !isString(dialogueVal) {
		return nil, &SchemaError{Node: id, Reason: `"dialogue" must be a string`, Line: dialogueVal.Line}
	}

	n := tree.NewNode(dialogueVal.Value)

	if linksVal == nil {
		return n, nil
	}
	if linksVal.Kind != yaml.SequenceNode {
		return nil, &SchemaError{Node: id, Reason: `"links" must be a sequence`, Line: linksVal.Line}
	}
	if len(linksVal.Content) == 0 {
		// Terminal nodes omit the key entirely; an empty sequence is a typo.
		return nil, &SchemaError{Node: id, Reason: `"links" must not be empty (omit the key for terminal nodes)`, Line: linksVal.Line}
	}

	for _, entry := range linksVal.Content {
		l, err := decodeLink(id, resolved(entry))
		if err != nil {
			return nil, err
		}
		n.AddLink(l)
	}
	return n, nil
}

// decodeLink accepts the minimal single-pair form "- target: dialogue" and
// the expanded form "- {name, dialogue, to}". The two are discriminated by
// entry count: a single-pair mapping is always minimal.
func decodeLink(nodeID string, entry *yaml.Node) (*tree.Link, error) {
	if entry.Kind != yaml.MappingNode || len(entry.Content) == 0 {
		return nil, &SchemaError{Node: nodeID, Reason: "link entries must be non-empty mappings", Line: entry.Line}
	}

	if len(entry.Content) == 2 {
		key := entry.Content[0]
		val := resolved(entry.Content[1])
		if !isString(key) || !isString(val) {
			return nil, &SchemaError{Node: nodeID, Reason: `link entry must be a single "target: dialogue" string pair`, Line: entry.Line}
		}
		return tree.LinkTo(key.Value, val.Value), nil
	}

	var name, dialogue, to *yaml.Node
	for key, val := range mappingPairs(entry) {
		switch key.Value {
		case "name":
			name = resolved(val)
		case "dialogue":
			dialogue = resolved(val)
		case "to":
			to = resolved(val)
		default:
			return nil, &SchemaError{Node: nodeID, Reason: fmt.Sprintf("unknown key %q in expanded link entry", key.Value), Line: key.Line}
		}
	}

	fields := []struct {
		name string
		val  *yaml.Node
	}{{"name", name}, {"dialogue", dialogue}, {"to", to}}
	for _, f := range fields {
		if f.val == nil {
			return nil, &SchemaError{Node: nodeID, Reason: fmt.Sprintf("expanded link entry missing %q", f.name), Line: entry.Line}
		}
		if !isString(f.val) {
			return nil, &SchemaError{Node: nodeID, Reason: fmt.Sprintf("expanded link entry field %q must be a string", f.name), Line: f.val.Line}
		}
	}

	return tree.NewLink(name.Value, dialogue.Value, to.Value), nil
}

// mappingPairs iterates a mapping node's (key, value) pairs in document order.
func mappingPairs(m *yaml.Node) func(yield func(*yaml.Node, *yaml.Node) bool) {
	return func(yield func(*yaml.Node, *yaml.Node) bool) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			if !yield(m.Content[i], m.Content[i+1]) {
				return
			}
		}
	}
}

// resolved follows an alias to its anchor so "*ref" values behave like the
// node they point at.
func resolved(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!str"
}
