/*
Package convo models, validates, imports, exports, and walks dialogue trees:
directed, possibly cyclic graphs of conversation nodes where each node holds
prompt text and a set of named choices leading to other nodes.

# Concept

A tree is an ordered set of nodes keyed by identifier plus a root identifier
naming the entry point. Each node carries dialogue and zero or more links; a
node with no links is terminal. Links target nodes by identifier rather than
by reference, so trees can be built in any order and may legitimately pass
through states that validation would reject. Walking is a cursor over the
tree: one node at a time, advancing by choice name in constant time.

The core stays decoupled from its surroundings. Persistence, transports, and
front-ends plug in through small interfaces in pkg/ports, with ready-made
adapters for files, Redis, SQLite, HTTP, and MCP elsewhere in the module.

# Key Features

  - Plain data model: nodes and links are buildable in code, no DSL required.
  - Opt-in strictness: link targets and reachability are only validated when
    asked, so partially wired trees stay workable.
  - Constant-time traversal with serializable walk state for long-running
    sessions.
  - A small YAML dialect for authoring trees by hand, with a canonical
    encoder for clean diffs.

# Usage

Build a tree, validate it, then walk it:

	package main

	import (
		"fmt"
		"log"

		"github.com/simbleau/convo"
	)

	func main() {
		t := convo.New()
		t.SetRoot("gate")

		gate := convo.NewNode("A guard blocks the way.")
		gate.AddLink(convo.NewLink("bribe", "Here, take this coin.", "inside"))
		t.AddNode("gate", gate)
		t.AddNode("inside", convo.NewNode("You slip through the gate."))

		if err := t.Validate(); err != nil {
			log.Fatal(err)
		}

		w, err := convo.Walk(t)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(w.Dialogue())

		if _, err := w.Advance("bribe"); err != nil {
			log.Fatal(err)
		}
		fmt.Println(w.Dialogue())
	}

The interactive front-ends live under cmd/convo; library consumers usually
need only this package, pkg/tree, and pkg/walker.
*/
package convo
