package codec

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simbleau/convo/pkg/tree"
)

// Encode emits the tree as a single YAML document. Nodes and links appear in
// insertion order; terminal nodes omit the "links" key; links named after
// their target use the minimal entry form and all others the expanded form.
//
// The tree must pass the default validation rules; nothing is emitted for an
// invalid tree.
func Encode(t *tree.Tree) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to encode an invalid tree: %w", err)
	}

	nodes := &yaml.Node{Kind: yaml.MappingNode}
	for id, n := range t.Nodes() {
		nodes.Content = append(nodes.Content, str(id), encodeNode(n))
	}

	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			str("root"), str(t.Root()),
			str("nodes"), nodes,
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("emit yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("emit yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeFile encodes the tree and writes it to path. Validation runs before
// the file is touched, so an invalid tree leaves no partial output behind.
func EncodeFile(t *tree.Tree, path string) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeNode(n *tree.Node) *yaml.Node {
	body := &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{str("dialogue"), str(n.Dialogue())},
	}

	if n.NumLinks() == 0 {
		return body
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for name, l := range n.Links() {
		seq.Content = append(seq.Content, encodeLink(name, l))
	}
	body.Content = append(body.Content, str("links"), seq)
	return body
}

func encodeLink(name string, l *tree.Link) *yaml.Node {
	if name == l.Target {
		return &yaml.Node{
			Kind:    yaml.MappingNode,
			Content: []*yaml.Node{str(name), str(l.Dialogue)},
		}
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			str("name"), str(name),
			str("dialogue"), str(l.Dialogue),
			str("to"), str(l.Target),
		},
	}
}

// str builds a string scalar. The explicit tag keeps values like "123" or
// "true" quoted so they read back as strings.
func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
