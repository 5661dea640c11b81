package convo_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbleau/convo"
)

const gateDialogue = `root: gate
nodes:
  gate:
    dialogue: A guard blocks the way.
    links:
      - name: bribe
        dialogue: Here, take this coin.
        to: inside
      - name: fight
        dialogue: Draw your sword!
        to: dead
  inside:
    dialogue: You slip through the gate.
  dead:
    dialogue: The guard was faster.
`

func TestFacade_RoundTrip(t *testing.T) {
	tr, err := convo.Parse(gateDialogue)
	require.NoError(t, err)
	assert.Equal(t, "gate", tr.Root())
	assert.Equal(t, 3, tr.Len())

	out, err := convo.Export(tr)
	require.NoError(t, err)

	again, err := convo.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, tr.Root(), again.Root())
	assert.Equal(t, tr.Len(), again.Len())
}

func TestFacade_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.convo.yml")

	tr, err := convo.Parse(gateDialogue)
	require.NoError(t, err)
	require.NoError(t, convo.ExportFile(tr, path))

	again, err := convo.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gate", again.Root())
	assert.Equal(t, 3, again.Len())
}

func TestFacade_BuildAndWalk(t *testing.T) {
	tr := convo.New()
	tr.SetRoot("gate")

	gate := convo.NewNode("A guard blocks the way.")
	gate.AddLink(convo.NewLink("bribe", "Here, take this coin.", "inside"))
	tr.AddNode("gate", gate)
	tr.AddNode("inside", convo.NewNode("You slip through the gate."))

	require.NoError(t, tr.Validate())

	w, err := convo.Walk(tr)
	require.NoError(t, err)
	assert.Equal(t, "gate", w.Current())
	assert.False(t, w.IsTerminal())

	next, err := w.Advance("bribe")
	require.NoError(t, err)
	assert.Equal(t, "inside", next)
	assert.True(t, w.IsTerminal())
}

func TestFacade_WalkNeedsRoot(t *testing.T) {
	tr := convo.New()
	tr.AddNode("adrift", convo.NewNode("No way in."))

	_, err := convo.Walk(tr)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	v := strings.TrimSpace(convo.Version)
	require.NotEmpty(t, v)
	assert.NotContains(t, v, "\n")
}
