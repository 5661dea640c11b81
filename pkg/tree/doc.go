/*
Package tree contains the core dialogue-tree model: Links, Nodes, the Tree
that holds them, and the validator that decides whether a tree is sound.

A Tree is a directed graph of conversation nodes keyed by identifier. Each
Node speaks a line of dialogue and offers named Links to other nodes. Both
collections preserve insertion order, so authored trees iterate, render, and
serialize the way they were written.

Construction is deliberately permissive: links may point at nodes that do not
exist yet, the root may be set before (or after, or never) its node is added,
and nodes may be overwritten in place. Validity is a property checked by
Validate, not enforced by constructors, which keeps building order-independent.

# Key Entities

  - Link: a named, one-way connection carrying choice dialogue and a target id.
  - Node: a line of dialogue plus an ordered collection of outgoing links.
  - Tree: an ordered collection of nodes and an optional root identifier.
  - Validate: accumulates every rule violation into a single MultiError.

The model is single-threaded. Concurrent reads of an unchanging tree are safe;
concurrent mutation is the caller's responsibility to serialize.
*/
package tree
