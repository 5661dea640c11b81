/*
Package runner implements the interactive loop for walking a dialogue tree
on a terminal.

It prints the current node's dialogue, lists the outgoing links as a
numbered menu, reads a line, and advances the walk. Input is sanitized
before use. The loop ends at a terminal node, on EOF, or on the :q command;
:r restarts at the root and :b steps back to the previously visited node.

# Key Components

  - Runner: the loop itself, configured with functional options.
  - ContentRenderer: optional hook that styles dialogue before printing,
    used for markdown rendering on rich terminals.
  - SanitizeInput: shared input hygiene, also used by the network adapters.

# Usage

	r := runner.New(
		runner.WithIO(os.Stdin, os.Stdout),
		runner.WithSession(manager, "player-1"),
	)

	if err := r.Run(ctx, tree); err != nil {
		log.Fatal(err)
	}
*/
package runner
