// Package graph renders dialogue trees as Mermaid flowcharts for docs and
// debugging. Dangling link targets are rendered too, so an invalid tree can
// still be inspected visually.
package graph

import (
	"fmt"
	"strings"

	"github.com/simbleau/convo/pkg/tree"
	"github.com/simbleau/convo/pkg/walker"
)

// Overlay highlights walk progress on the rendered graph.
type Overlay struct {
	Visited []string
	Current string
}

// OverlayFromState builds an Overlay from a stored walk.
func OverlayFromState(state *walker.State) *Overlay {
	if state == nil {
		return nil
	}
	return &Overlay{
		Visited: state.History,
		Current: state.Current,
	}
}

// Mermaid produces Mermaid flowchart syntax for the tree.
// The root renders as a circle, terminal nodes as stadiums, and edges carry
// the link name as a label unless the name just repeats the target.
func Mermaid(t *tree.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for id, node := range t.Nodes() {
		safeID := sanitizeID(id)

		opener, closer := "[", "]"
		switch {
		case id == t.Root():
			opener, closer = "((", "))"
		case node.IsTerminal():
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(id), closer))

		for name, link := range node.Links() {
			safeTo := sanitizeID(link.Target)
			arrow := "-->"
			if name != link.Target {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(name))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Walk overlay\n")
		// Force black text for contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		current := sanitizeID(overlay.Current)
		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeID(id)
			if safeID == "" || safeID == current || seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
		}
		if current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", current))
		}
	}

	return sb.String()
}

// sanitizeID rewrites a node ID into something Mermaid accepts as an
// identifier. Distinct IDs can collide after sanitization; the label keeps
// the original spelling either way.
func sanitizeID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
