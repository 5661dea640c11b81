package dsl

import (
	"errors"
	"testing"

	"github.com/simbleau/convo/pkg/tree"
)

func TestBuilder_SimpleTree(t *testing.T) {
	b := Build("gate")

	b.Node("gate").
		Say("A guard blocks the way.").
		Choice("bribe", "Offer him coin.", "inside").
		ChoiceTo("gate", "Wait around.")

	b.Node("inside").
		Say("He pockets the coin and opens the gate.")

	tr, err := b.Tree()
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}

	if tr.Root() != "gate" {
		t.Errorf("Root() = %q, want %q", tr.Root(), "gate")
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}

	gate, ok := tr.Node("gate")
	if !ok {
		t.Fatal("Node(gate) not found")
	}
	l, ok := gate.Link("bribe")
	if !ok {
		t.Fatal("Link(bribe) not found")
	}
	if l.Target != "inside" {
		t.Errorf("Target = %q, want %q", l.Target, "inside")
	}
}

func TestBuilder_ForwardReferences(t *testing.T) {
	// Links may name nodes declared later.
	b := Build("a")
	b.Node("a").Say("First.").ChoiceTo("b", "Onward.")
	b.Node("b").Say("Second.")

	if _, err := b.Tree(tree.WithLinkCheck(), tree.WithReachabilityCheck()); err != nil {
		t.Errorf("Tree() with strict validation = %v, want nil", err)
	}
}

func TestBuilder_NodeReturnsExisting(t *testing.T) {
	b := Build("a")
	first := b.Node("a").Say("Declared early.")
	second := b.Node("a")

	if first != second {
		t.Error("Node(a) should return the same builder on repeat calls")
	}

	// Declaration order is first-use order.
	b.Node("b").Say("Second.")
	b.Node("a").ChoiceTo("b", "Go.")

	tr, err := b.Tree()
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for id := range tr.Nodes() {
		ids = append(ids, id)
	}
	if ids[0] != "a" || ids[1] != "b" {
		t.Errorf("node order = %v, want [a b]", ids)
	}
}

func TestBuilder_InvalidTree(t *testing.T) {
	b := Build("a")
	b.Node("a") // never Say()ed

	_, err := b.Tree()
	if err == nil {
		t.Fatal("Tree() should fail for a node with no dialogue")
	}
	var md *tree.MissingDialogueError
	if !errors.As(err, &md) {
		t.Errorf("error = %v, want *tree.MissingDialogueError", err)
	}
}

func TestBuilder_MustTreePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustTree should panic on an invalid tree")
		}
	}()
	Build("missing").MustTree()
}

func TestBuilder_ChoiceOverwrite(t *testing.T) {
	b := Build("a")
	b.Node("a").
		Say("Pick.").
		Choice("door", "The red door.", "red").
		Choice("door", "The blue door.", "blue")
	b.Node("red").Say("Red room.")
	b.Node("blue").Say("Blue room.")

	tr, err := b.Tree()
	if err != nil {
		t.Fatal(err)
	}

	a, _ := tr.Node("a")
	if a.NumLinks() != 1 {
		t.Fatalf("NumLinks() = %d, want 1 after overwrite", a.NumLinks())
	}
	l, _ := a.Link("door")
	if l.Target != "blue" {
		t.Errorf("Target = %q, want %q (last write wins)", l.Target, "blue")
	}
}
