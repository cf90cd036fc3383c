package rule

// Trie maps exact neighbor-state sequences to a result state. Insertion
// happens only while the engine initializes; lookups afterwards are O(K)
// regardless of how many rules are stored.
type Trie struct {
	root *trieNode
}

type trieNode struct {
	children map[int]*trieNode
	terminal bool
	result   int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &trieNode{}}
}

// Insert stores pattern -> result. Re-inserting an identical pattern
// overwrites the previous result; last write wins.
func (t *Trie) Insert(pattern []int, result int) {
	n := t.root
	for _, s := range pattern {
		if n.children == nil {
			n.children = make(map[int]*trieNode)
		}
		child, ok := n.children[s]
		if !ok {
			child = &trieNode{}
			n.children[s] = child
		}
		n = child
	}
	n.terminal = true
	n.result = result
}

// Next walks the trie along neighbors. ok is false when the path does not
// exist end to end, or ends on a node where no rule terminates; the engine
// treats that as identity.
func (t *Trie) Next(neighbors []int) (state int, ok bool) {
	n := t.root
	for _, s := range neighbors {
		n = n.children[s]
		if n == nil {
			return 0, false
		}
	}
	if !n.terminal {
		return 0, false
	}
	return n.result, true
}
