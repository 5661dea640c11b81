package tree

// Link is a named, one-way connection from one node to another.
// The target is a plain identifier rather than a reference, so links can be
// created before the node they point at exists. A link whose target never
// materializes is representable; WithLinkCheck validation or a walker advance
// will surface it.
type Link struct {
	// Name identifies the link among its node's choices. Node.AddLink keeps
	// it in sync with the key the link is stored under.
	Name string `json:"name" yaml:"name"`

	// Dialogue is the text presented to the player for this choice.
	Dialogue string `json:"dialogue" yaml:"dialogue"`

	// Target is the identifier of the destination node.
	Target string `json:"target" yaml:"target"`
}

// NewLink creates a link with the given name, choice dialogue, and target
// node identifier.
func NewLink(name, dialogue, target string) *Link {
	return &Link{Name: name, Dialogue: dialogue, Target: target}
}

// LinkTo creates a link in the minimal form, where the link is named after
// the node it targets. This is the shape the textual format writes as
// "- target: dialogue".
func LinkTo(target, dialogue string) *Link {
	return &Link{Name: target, Dialogue: dialogue, Target: target}
}
