package ports

import (
	"context"

	"github.com/simbleau/convo/pkg/tree"
)

// TreeSource defines how front-ends retrieve a dialogue tree. It decouples
// the serving layer from where the tree actually lives.
type TreeSource interface {
	// Load returns the current tree. Implementations must not mutate the
	// returned tree afterwards; callers treat it as read-only and may walk
	// it from any number of goroutines.
	Load(ctx context.Context) (*tree.Tree, error)
}

// Watchable is implemented by sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying data
	// changes. It abstracts away the event details, signaling only that a
	// reload is required. The channel closes when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
