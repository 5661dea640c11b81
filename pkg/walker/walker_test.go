package walker

import (
	"errors"
	"testing"

	"github.com/simbleau/convo/pkg/tree"
)

// guardTree builds:
//
//	gate -> { bribe -> inside, fight -> dead }
//	inside, dead are terminal.
func guardTree() *tree.Tree {
	tr := tree.New()

	gate := tree.NewNode("A guard blocks the gate.")
	gate.AddLink(tree.NewLink("bribe", "Offer him coin.", "inside"))
	gate.AddLink(tree.NewLink("fight", "Draw your sword.", "dead"))

	tr.AddNode("gate", gate)
	tr.AddNode("inside", tree.NewNode("The guard waves you through."))
	tr.AddNode("dead", tree.NewNode("That went poorly."))
	tr.SetRoot("gate")
	return tr
}

func TestWalker_New(t *testing.T) {
	tr := guardTree()

	w, err := New(tr, "gate")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.Current() != "gate" {
		t.Errorf("Current() = %q, want %q", w.Current(), "gate")
	}
	if w.Dialogue() != "A guard blocks the gate." {
		t.Errorf("Dialogue() = %q", w.Dialogue())
	}

	_, err = New(tr, "ghost")
	var nnf *tree.NodeNotFoundError
	if !errors.As(err, &nnf) {
		t.Fatalf("New(ghost) error = %v, want *tree.NodeNotFoundError", err)
	}
	if nnf.ID != "ghost" {
		t.Errorf("ID = %q, want %q", nnf.ID, "ghost")
	}
}

func TestWalker_FromRoot(t *testing.T) {
	tr := guardTree()
	w, err := FromRoot(tr)
	if err != nil {
		t.Fatalf("FromRoot() error = %v", err)
	}
	if w.Current() != "gate" {
		t.Errorf("Current() = %q, want %q", w.Current(), "gate")
	}

	tr.ClearRoot()
	if _, err := FromRoot(tr); !errors.Is(err, tree.ErrMissingRoot) {
		t.Errorf("FromRoot() without root = %v, want ErrMissingRoot", err)
	}
}

func TestWalker_Advance(t *testing.T) {
	w, _ := FromRoot(guardTree())

	dialogue, err := w.Advance("bribe")
	if err != nil {
		t.Fatalf("Advance(bribe) error = %v", err)
	}
	if dialogue != "The guard waves you through." {
		t.Errorf("Advance returned %q", dialogue)
	}
	if w.Current() != "inside" {
		t.Errorf("Current() = %q, want %q", w.Current(), "inside")
	}
	if !w.IsTerminal() {
		t.Error("inside should be terminal")
	}
}

func TestWalker_AdvanceUnknownLink(t *testing.T) {
	w, _ := FromRoot(guardTree())

	_, err := w.Advance("sneak")
	var lnf *LinkNotFoundError
	if !errors.As(err, &lnf) {
		t.Fatalf("Advance(sneak) error = %v, want *LinkNotFoundError", err)
	}
	if lnf.NodeID != "gate" || lnf.Name != "sneak" {
		t.Errorf("LinkNotFoundError = %+v", lnf)
	}

	// The cursor did not move.
	if w.Current() != "gate" {
		t.Errorf("Current() = %q after failed advance, want %q", w.Current(), "gate")
	}
}

func TestWalker_AdvanceDanglingLink(t *testing.T) {
	tr := guardTree()
	gate, _ := tr.Node("gate")
	gate.AddLink(tree.LinkTo("tunnel", "Slip through the old tunnel."))

	w, _ := FromRoot(tr)
	_, err := w.Advance("tunnel")

	var tnf *TargetNotFoundError
	if !errors.As(err, &tnf) {
		t.Fatalf("Advance(tunnel) error = %v, want *TargetNotFoundError", err)
	}
	if tnf.NodeID != "gate" || tnf.Link != "tunnel" || tnf.Target != "tunnel" {
		t.Errorf("TargetNotFoundError = %+v", tnf)
	}
	if w.Current() != "gate" {
		t.Errorf("Current() = %q after failed advance, want %q", w.Current(), "gate")
	}
}

func TestWalker_TerminalNode(t *testing.T) {
	w, _ := FromRoot(guardTree())
	if _, err := w.Advance("fight"); err != nil {
		t.Fatalf("Advance(fight) error = %v", err)
	}

	if !w.IsTerminal() {
		t.Fatal("dead should be terminal")
	}

	count := 0
	for range w.Links() {
		count++
	}
	if count != 0 {
		t.Errorf("terminal node yielded %d links, want 0", count)
	}

	var lnf *LinkNotFoundError
	if _, err := w.Advance("anything"); !errors.As(err, &lnf) {
		t.Errorf("Advance at terminal = %v, want *LinkNotFoundError", err)
	}
}

func TestWalker_LinksOrder(t *testing.T) {
	w, _ := FromRoot(guardTree())

	var names []string
	for name, l := range w.Links() {
		names = append(names, name)
		if l.Dialogue == "" {
			t.Errorf("link %q has empty dialogue", name)
		}
	}

	want := []string{"bribe", "fight"}
	if len(names) != len(want) {
		t.Fatalf("Links() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Links() order = %v, want %v", names, want)
		}
	}
}

func TestWalker_ResetAndRewind(t *testing.T) {
	w, _ := FromRoot(guardTree())
	if _, err := w.Advance("bribe"); err != nil {
		t.Fatal(err)
	}

	if err := w.Reset("dead"); err != nil {
		t.Fatalf("Reset(dead) error = %v", err)
	}
	if w.Current() != "dead" {
		t.Errorf("Current() = %q, want %q", w.Current(), "dead")
	}

	var nnf *tree.NodeNotFoundError
	if err := w.Reset("ghost"); !errors.As(err, &nnf) {
		t.Errorf("Reset(ghost) = %v, want *tree.NodeNotFoundError", err)
	}
	if w.Current() != "dead" {
		t.Errorf("Current() = %q after failed reset, want %q", w.Current(), "dead")
	}

	if err := w.Rewind(); err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}
	if w.Current() != "gate" {
		t.Errorf("Current() = %q after rewind, want %q", w.Current(), "gate")
	}
}

func TestWalker_CycleWalksForever(t *testing.T) {
	tr := tree.New()
	loop := tree.NewNode("You are in a maze of twisty little passages, all alike.")
	loop.AddLink(tree.NewLink("onward", "Press on.", "maze"))
	tr.AddNode("maze", loop)
	tr.SetRoot("maze")

	w, _ := FromRoot(tr)
	for i := 0; i < 100; i++ {
		if _, err := w.Advance("onward"); err != nil {
			t.Fatalf("Advance #%d error = %v", i, err)
		}
	}
	if w.Current() != "maze" {
		t.Errorf("Current() = %q, want %q", w.Current(), "maze")
	}
}

func TestWalker_SharedTree(t *testing.T) {
	tr := guardTree()
	a, _ := FromRoot(tr)
	b, _ := FromRoot(tr)

	if _, err := a.Advance("bribe"); err != nil {
		t.Fatal(err)
	}

	// Walkers are independent cursors over the same tree.
	if b.Current() != "gate" {
		t.Errorf("second walker moved to %q, want %q", b.Current(), "gate")
	}
}

func TestState_AdvanceAndVisited(t *testing.T) {
	s := NewState("tavern-42", "gate")
	s.Advance("inside")
	s.Advance("gate")

	if s.Current != "gate" {
		t.Errorf("Current = %q, want %q", s.Current, "gate")
	}
	if len(s.History) != 3 {
		t.Errorf("History = %v, want 3 entries", s.History)
	}
	if !s.Visited("inside") {
		t.Error("Visited(inside) = false, want true")
	}
	if s.Visited("dead") {
		t.Error("Visited(dead) = true, want false")
	}
	if s.UpdatedAt.Before(s.StartedAt) {
		t.Error("UpdatedAt should not precede StartedAt")
	}
}

func TestState_Clone(t *testing.T) {
	s := NewState("tavern-42", "gate")
	c := s.Clone()
	c.Advance("inside")

	if s.Current != "gate" || len(s.History) != 1 {
		t.Errorf("mutating the clone changed the original: %+v", s)
	}
}
