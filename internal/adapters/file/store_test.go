package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbleau/convo/pkg/ports/tests"
	"github.com/simbleau/convo/pkg/walker"
)

func TestStore_Contract(t *testing.T) {
	tests.StateStoreContractTest(t, New(t.TempDir()))
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	err := store.Save(ctx, "../escape", walker.NewState("../escape", "gate"))
	require.Error(t, err)

	_, err = store.Load(ctx, `..\escape`)
	require.Error(t, err)
}

func TestStore_ListSkipsStrayFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "kept", walker.NewState("kept", "gate")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-kept-123.json"), []byte("{}"), 0644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, ids)
}

func TestStore_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := New(dir)
	state := walker.NewState("hero", "gate")
	state.Advance("inside")
	require.NoError(t, first.Save(ctx, "hero", state))

	// A new store over the same directory sees the session.
	second := New(dir)
	got, err := second.Load(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "inside", got.Current)
	assert.Equal(t, []string{"gate", "inside"}, got.History)
}

const watchYAML = `root: a
nodes:
  a:
    dialogue: Hello.
`

func TestSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.convo.yml")
	require.NoError(t, os.WriteFile(path, []byte(watchYAML), 0644))

	src := NewSource(path)
	tr, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", tr.Root())
}

func TestSource_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.convo.yml")
	require.NoError(t, os.WriteFile(path, []byte(watchYAML), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewSource(path)
	ch, err := src.Watch(ctx)
	require.NoError(t, err)

	// Touch the file and expect a signal.
	require.NoError(t, os.WriteFile(path, []byte(watchYAML+"  b:\n    dialogue: More.\n"), 0644))

	select {
	case _, ok := <-ch:
		require.True(t, ok, "channel closed before signaling")
	case <-time.After(5 * time.Second):
		t.Fatal("no watch signal within 5s")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // closed, as expected
			}
			// drain any straggler signal
		case <-deadline:
			t.Fatal("channel did not close after cancel")
		}
	}
}
