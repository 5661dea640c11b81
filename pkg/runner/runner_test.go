package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/simbleau/convo/pkg/adapters/memory"
	"github.com/simbleau/convo/pkg/dsl"
	"github.com/simbleau/convo/pkg/runner"
	"github.com/simbleau/convo/pkg/session"
	"github.com/simbleau/convo/pkg/tree"
)

func gateTree(t *testing.T) *tree.Tree {
	t.Helper()
	return dsl.Build("gate").
		Node("gate").Say("A guard blocks the way.").
		Choice("bribe", "Here, take this coin.", "inside").
		Choice("fight", "Draw your sword!", "dead").Done().
		Node("inside").Say("You slip through the gate.").Done().
		Node("dead").Say("The guard was faster.").Done().
		MustTree()
}

// run executes the runner against scripted input and returns the output.
func run(t *testing.T, tr *tree.Tree, input string, opts ...runner.Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]runner.Option{runner.WithIO(strings.NewReader(input), &out)}, opts...)

	r := runner.New(opts...)
	if err := r.Run(context.Background(), tr); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return out.String()
}

func TestRun_NumberedChoice(t *testing.T) {
	out := run(t, gateTree(t), "1\n")

	for _, want := range []string{
		"A guard blocks the way.",
		`1) bribe  "Here, take this coin."`,
		`2) fight  "Draw your sword!"`,
		"You slip through the gate.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_ChoiceByName(t *testing.T) {
	out := run(t, gateTree(t), "fight\n")
	if !strings.Contains(out, "The guard was faster.") {
		t.Errorf("output missing death dialogue:\n%s", out)
	}
}

func TestRun_QuitCommand(t *testing.T) {
	out := run(t, gateTree(t), ":q\n")
	if strings.Contains(out, "You slip through the gate.") {
		t.Errorf(":q should stop before advancing:\n%s", out)
	}
}

func TestRun_EOFEndsWalk(t *testing.T) {
	out := run(t, gateTree(t), "")
	if !strings.Contains(out, "A guard blocks the way.") {
		t.Errorf("root node should still render:\n%s", out)
	}
}

func TestRun_InvalidChoicePromptsAgain(t *testing.T) {
	out := run(t, gateTree(t), "7\nbogus\n1\n")

	if !strings.Contains(out, `No choice "7" here`) {
		t.Errorf("out-of-range number not reported:\n%s", out)
	}
	if !strings.Contains(out, `No choice "bogus" here`) {
		t.Errorf("unknown name not reported:\n%s", out)
	}
	if !strings.Contains(out, "You slip through the gate.") {
		t.Errorf("walk should still finish:\n%s", out)
	}
}

func TestRun_BackCommand(t *testing.T) {
	tr := dsl.Build("hall").
		Node("hall").Say("The hall is cold.").ChoiceTo("stairs", "").Done().
		Node("stairs").Say("The stairs creak.").ChoiceTo("attic", "").Done().
		Node("attic").Say("Dust everywhere.").Done().
		MustTree()

	out := run(t, tr, "1\n:b\n:q\n")

	if got := strings.Count(out, "The hall is cold."); got != 2 {
		t.Errorf("hall rendered %d times, want 2 (before and after :b):\n%s", got, out)
	}
}

func TestRun_RewindCommand(t *testing.T) {
	out := run(t, gateTree(t), ":r\n:q\n")
	if got := strings.Count(out, "A guard blocks the way."); got != 2 {
		t.Errorf("gate rendered %d times, want 2 (before and after :r):\n%s", got, out)
	}
}

func TestRun_BackWithEmptyHistory(t *testing.T) {
	out := run(t, gateTree(t), ":b\n:q\n")
	if !strings.Contains(out, "Nothing to go back to.") {
		t.Errorf("empty history not reported:\n%s", out)
	}
}

func TestRun_BrokenLinkIsNotFatal(t *testing.T) {
	tr := dsl.Build("edge").
		Node("edge").Say("The map is torn here.").
		Choice("onward", "", "lost_city").
		Choice("home", "", "camp").Done().
		Node("camp").Say("Back at camp.").Done().
		MustTree()

	out := run(t, tr, "onward\nhome\n")

	if !strings.Contains(out, "That path is broken") {
		t.Errorf("dangling link not reported:\n%s", out)
	}
	if !strings.Contains(out, "Back at camp.") {
		t.Errorf("walk should continue after a broken link:\n%s", out)
	}
}

func TestRun_RendererStylesDialogue(t *testing.T) {
	styled := func(s string) (string, error) {
		return "[[" + s + "]]", nil
	}

	out := run(t, gateTree(t), ":q\n", runner.WithRenderer(styled))
	if !strings.Contains(out, "[[A guard blocks the way.]]") {
		t.Errorf("renderer not applied:\n%s", out)
	}
}

func TestRun_SessionPersistsSteps(t *testing.T) {
	tr := gateTree(t)
	store := memory.NewStore()
	mgr := session.NewManager(store)

	var out bytes.Buffer
	r := runner.New(
		runner.WithIO(strings.NewReader("1\n"), &out),
		runner.WithSession(mgr, ""),
	)
	if err := r.Run(context.Background(), tr); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	id := r.SessionID()
	if id == "" {
		t.Fatal("SessionID() should be set after a managed run")
	}

	state, err := store.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.Current != "inside" {
		t.Errorf("Current = %q, want %q", state.Current, "inside")
	}
	if len(state.History) != 2 {
		t.Errorf("History = %v, want two entries", state.History)
	}
}

func TestRun_SessionResumes(t *testing.T) {
	tr := gateTree(t)
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	if _, err := mgr.Start(ctx, tr, "hero"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := mgr.Advance(ctx, tr, "hero", "bribe"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	var out bytes.Buffer
	r := runner.New(
		runner.WithIO(strings.NewReader(""), &out),
		runner.WithSession(mgr, "hero"),
	)
	if err := r.Run(ctx, tr); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !strings.Contains(out.String(), `Resuming session "hero"`) {
		t.Errorf("resume notice missing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "You slip through the gate.") {
		t.Errorf("resumed node not rendered:\n%s", out.String())
	}
}
