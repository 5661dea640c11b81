package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRoot reports a tree whose root identifier was never set.
	ErrMissingRoot = errors.New("tree has no root set")

	// ErrEmptyTree reports a tree that contains no nodes.
	ErrEmptyTree = errors.New("tree has no nodes")
)

// RootNotFoundError reports a root identifier that names no node in the tree.
type RootNotFoundError struct {
	Root string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("root %q does not exist in the tree", e.Root)
}

// NodeNotFoundError reports an identifier that names no node in the tree.
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %q does not exist in the tree", e.ID)
}

// MissingDialogueError reports a node whose dialogue is empty.
type MissingDialogueError struct {
	NodeID string
}

func (e *MissingDialogueError) Error() string {
	return fmt.Sprintf("node %q has no dialogue", e.NodeID)
}

// DanglingLinkError reports a link whose target names no node in the tree.
type DanglingLinkError struct {
	NodeID string // node the link belongs to
	Link   string // link name
	Target string // missing target identifier
}

func (e *DanglingLinkError) Error() string {
	return fmt.Sprintf("link %q on node %q targets missing node %q", e.Link, e.NodeID, e.Target)
}

// UnreachableNodeError reports a node that cannot be reached from the root.
type UnreachableNodeError struct {
	NodeID string
}

func (e *UnreachableNodeError) Error() string {
	return fmt.Sprintf("node %q is not reachable from the root", e.NodeID)
}

// MultiError collects every finding from a validation pass.
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual findings to errors.Is and errors.As.
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns the individual findings if err is a MultiError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var multi *MultiError
	if errors.As(err, &multi) {
		return multi.Errors
	}
	return nil
}
