package walker

import "fmt"

// LinkNotFoundError reports a choice name the current node does not offer.
type LinkNotFoundError struct {
	NodeID string // node the walker was on
	Name   string // requested link name
}

func (e *LinkNotFoundError) Error() string {
	return fmt.Sprintf("node %q has no link named %q", e.NodeID, e.Name)
}

// TargetNotFoundError reports a link that was followed but whose target
// names no node in the tree.
type TargetNotFoundError struct {
	NodeID string // node the walker was on
	Link   string // link that was followed
	Target string // missing target identifier
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("link %q on node %q targets missing node %q", e.Link, e.NodeID, e.Target)
}
