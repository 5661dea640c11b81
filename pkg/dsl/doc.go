/*
Package dsl provides a fluent builder for constructing dialogue trees in Go
code instead of YAML files. This is handy for generated conversations, unit
tests, and anywhere IDE autocompletion beats editing text by hand.

Example usage:

	t := dsl.Build("gate").
		Node("gate").
		Say("A guard blocks the way.").
		Choice("bribe", "Offer him coin.", "inside").
		ChoiceTo("gate", "Wait around.").
		Done().
		Node("inside").
		Say("He pockets the coin and opens the gate.").
		Done().
		MustTree()

Nodes may be declared in any order and links may point forward at nodes that
are declared later; the tree is validated once when Tree or MustTree
finalizes it.
*/
package dsl
