package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simbleau/convo/internal/adapters/file"
	"github.com/simbleau/convo/internal/presentation/tui"
	"github.com/simbleau/convo/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Walk a dialogue tree interactively",
	Long: `Starts an interactive walk over the given dialogue file. Choices are
picked by number or by name; :b steps back, :r rewinds to the root, and
:q quits. With --session the walk is saved to the selected store and
picks up where it left off next time.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")
		watch, _ := cmd.Flags().GetBool("watch")

		if err := runWalk(cmd.Context(), args[0], sessionID, watch); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "session to resume or create in the selected store")
	runCmd.Flags().BoolP("watch", "w", false, "restart the walk when the dialogue file changes")
}

func runWalk(parent context.Context, path, sessionID string, watch bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	opts := []runner.Option{runner.WithLogger(logger)}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		tui.PrintBanner(os.Stdout)
		opts = append(opts, runner.WithRenderer(tui.NewRenderer()))
	}

	// Sessions are persisted when one is named or a durable store was
	// picked. A plain `convo run file` stays throwaway.
	if sessionID != "" || cfg.GetString("store") != "memory" {
		manager, closeStore, err := newManager()
		if err != nil {
			return err
		}
		defer closeStore()
		opts = append(opts, runner.WithSession(manager, sessionID))
	}

	r := runner.New(opts...)

	if !watch {
		t, err := loadTree(path)
		if err != nil {
			return err
		}
		return r.Run(ctx, t)
	}

	src := file.NewSource(path)
	events, err := src.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	for {
		t, err := src.Load(ctx)
		if err != nil {
			// A broken save is survivable in watch mode; hold the last
			// prompt and wait for the next write.
			logger.Warn("dialogue reload failed", "error", err)
			select {
			case _, ok := <-events:
				if !ok {
					return nil
				}
				continue
			case <-ctx.Done():
				return nil
			}
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- r.Run(runCtx, t) }()

		select {
		case err := <-done:
			cancel()
			return err
		case _, ok := <-events:
			cancel()
			<-done
			if !ok {
				return nil
			}
			fmt.Println("\n>>> Dialogue changed, restarting walk.")
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		}
	}
}
