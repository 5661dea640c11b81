/*
Package walker provides the cursor that traverses a dialogue tree.

A Walker borrows a tree without owning or mutating it, tracks the current
node, and moves by choosing named links. A failed move never changes the
cursor. Several walkers may share one tree, which makes read-only fan-out
(many players, one script) cheap.

State is the serializable snapshot of a walk: the session layer persists it
between steps so a conversation can be resumed later or on another process.
*/
package walker
