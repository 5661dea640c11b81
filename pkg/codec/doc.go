/*
Package codec reads and writes the textual dialogue-tree format.

The format is a single YAML document:

	root: start
	nodes:
	  start:
	    dialogue: The guard eyes you suspiciously.
	    links:
	      - inside: Bribe him with a gold coin.
	      - start: Wait.
	  inside:
	    dialogue: He pockets the coin and opens the gate.

"root" names the entry node. Each node carries its dialogue and, unless it is
terminal, a non-empty "links" sequence. A link entry is normally a single
"target: dialogue" pair, which names the link after its target. When a link's
name differs from its target the expanded entry form is used instead:

	links:
	  - name: persuade
	    dialogue: Appeal to his better nature.
	    to: inside

Both entry forms may mix within one sequence. Decoding preserves document
order of nodes and links, and encoding writes them back in insertion order,
so files round-trip without reshuffling. Decode and Encode both run the
default validation rules; a tree that fails them is neither produced nor
emitted. Unknown keys are ignored for forward compatibility.
*/
package codec
