package tree

// validateConfig carries the opt-in strictness toggles for a validation pass.
type validateConfig struct {
	checkLinks        bool
	checkReachability bool
}

// ValidateOption configures a validation pass.
type ValidateOption func(*validateConfig)

// WithLinkCheck additionally requires every link target to name an existing
// node. Off by default: dangling links are a legitimate state while building
// and while a removed node's inbound links are being repointed.
func WithLinkCheck() ValidateOption {
	return func(c *validateConfig) {
		c.checkLinks = true
	}
}

// WithReachabilityCheck additionally requires every node to be reachable
// from the root by following links. Off by default for the same reason as
// WithLinkCheck: partially wired trees are a normal intermediate state.
func WithReachabilityCheck() ValidateOption {
	return func(c *validateConfig) {
		c.checkReachability = true
	}
}

// Validate checks the tree against the soundness rules and returns nil when
// every rule passes. Findings accumulate rather than short-circuit: the
// returned error is a *MultiError holding one entry per violation, so a
// single pass reports everything wrong with the tree.
//
// The default rules require a root to be set, at least one node to exist,
// the root to name an existing node, and every node to have non-empty
// dialogue. WithLinkCheck and WithReachabilityCheck enable the stricter
// rules. Cycles are valid; a tree that loops forever is still a sound tree.
func (t *Tree) Validate(opts ...ValidateOption) error {
	var cfg validateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var errs []error

	if t.root == "" {
		errs = append(errs, ErrMissingRoot)
	}
	if t.nodes.Len() == 0 {
		errs = append(errs, ErrEmptyTree)
	}

	rootExists := false
	if t.root != "" && t.nodes.Len() > 0 {
		if _, ok := t.Node(t.root); ok {
			rootExists = true
		} else {
			errs = append(errs, &RootNotFoundError{Root: t.root})
		}
	}

	for id, n := range t.Nodes() {
		if n.Dialogue() == "" {
			errs = append(errs, &MissingDialogueError{NodeID: id})
		}
	}

	if cfg.checkLinks {
		for id, n := range t.Nodes() {
			for name, l := range n.Links() {
				if _, ok := t.Node(l.Target); !ok {
					errs = append(errs, &DanglingLinkError{NodeID: id, Link: name, Target: l.Target})
				}
			}
		}
	}

	if cfg.checkReachability && rootExists {
		for _, id := range t.unreachable() {
			errs = append(errs, &UnreachableNodeError{NodeID: id})
		}
	}

	if len(errs) > 0 {
		return &MultiError{Errors: errs}
	}
	return nil
}

// unreachable returns, in insertion order, the identifiers of nodes a
// breadth-first crawl from the root never visits. Dangling targets are
// skipped rather than followed; WithLinkCheck owns reporting those.
func (t *Tree) unreachable() []string {
	visited := map[string]bool{t.root: true}
	queue := []string{t.root}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		n, ok := t.Node(id)
		if !ok {
			continue
		}
		for _, l := range n.Links() {
			if visited[l.Target] {
				continue
			}
			if _, ok := t.Node(l.Target); !ok {
				continue
			}
			visited[l.Target] = true
			queue = append(queue, l.Target)
		}
	}

	var missed []string
	for id := range t.Nodes() {
		if !visited[id] {
			missed = append(missed, id)
		}
	}
	return missed
}
