package tests

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/walker"
)

// StateStoreContractTest is a reusable suite that verifies an adapter
// complies with ports.StateStore. Each store's own test calls it with a
// freshly constructed, empty store.
func StateStoreContractTest(t *testing.T, store ports.StateStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "never-saved")
		if !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("Load(missing) = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("SaveLoad", func(t *testing.T) {
		state := walker.NewState("alpha", "gate")
		state.Advance("inside")

		if err := store.Save(ctx, "alpha", state); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := store.Load(ctx, "alpha")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.SessionID != "alpha" || got.Current != "inside" {
			t.Errorf("loaded state = %+v", got)
		}
		if len(got.History) != 2 || got.History[0] != "gate" {
			t.Errorf("History = %v, want [gate inside]", got.History)
		}
	})

	t.Run("Save_Overwrites", func(t *testing.T) {
		if err := store.Save(ctx, "beta", walker.NewState("beta", "gate")); err != nil {
			t.Fatalf("Save: %v", err)
		}
		updated := walker.NewState("beta", "gate")
		updated.Advance("dead")
		if err := store.Save(ctx, "beta", updated); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := store.Load(ctx, "beta")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Current != "dead" {
			t.Errorf("Current = %q, want %q", got.Current, "dead")
		}
	})

	t.Run("Load_IsolatedFromCallerMutation", func(t *testing.T) {
		if err := store.Save(ctx, "gamma", walker.NewState("gamma", "gate")); err != nil {
			t.Fatalf("Save: %v", err)
		}
		first, err := store.Load(ctx, "gamma")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		first.Advance("elsewhere")

		second, err := store.Load(ctx, "gamma")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if second.Current != "gate" {
			t.Error("mutating a loaded state must not affect the store")
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, want := range []string{"alpha", "beta", "gamma"} {
			if !slices.Contains(ids, want) {
				t.Errorf("List() = %v, missing %q", ids, want)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "alpha"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.Load(ctx, "alpha"); !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("Load(deleted) = %v, want ErrSessionNotFound", err)
		}
		if err := store.Delete(ctx, "alpha"); !errors.Is(err, ports.ErrSessionNotFound) {
			t.Errorf("Delete(missing) = %v, want ErrSessionNotFound", err)
		}
	})
}
