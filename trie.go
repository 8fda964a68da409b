package signal

// trieNode is one node of the routing trie (spec §3 "Routing Trie"). At
// each node, children are partitioned into three buckets: literals (keyed
// by exact string), "*", and "**". Terminal nodes carry the Routes whose
// patterns end there, in insertion order.
//
// Nodes are persistent: insert/removeRoutes never mutate a node in place,
// they return a new node sharing every untouched subtree with the input
// (spec §9 "Router immutability", spec §5). This lets concurrent readers
// hold an older *trieNode snapshot safely while a writer publishes a new
// one.
type trieNode struct {
	literal  map[string]*trieNode
	wildcard *trieNode
	multi    *trieNode
	routes   []*Route
}

func emptyTrieNode() *trieNode {
	return &trieNode{}
}

// clone returns a shallow copy of n, safe to mutate the top-level fields of
// without affecting n itself. Child maps/pointers and the routes slice are
// still shared until a further clone touches them.
func (n *trieNode) clone() *trieNode {
	if n == nil {
		return emptyTrieNode()
	}
	cp := &trieNode{
		wildcard: n.wildcard,
		multi:    n.multi,
		routes:   n.routes,
	}
	if n.literal != nil {
		cp.literal = make(map[string]*trieNode, len(n.literal))
		for k, v := range n.literal {
			cp.literal[k] = v
		}
	}
	return cp
}

// insert returns a new trie rooted at a node equivalent to root with route
// added along pattern's segment path, preserving insertion order at the
// terminal node.
func insert(root *trieNode, segments []patternSegment, route *Route) *trieNode {
	node := root.clone()
	if len(segments) == 0 {
		node.routes = append(append([]*Route{}, node.routes...), route)
		return node
	}

	head, rest := segments[0], segments[1:]
	switch head.kind {
	case segLiteral:
		if node.literal == nil {
			node.literal = make(map[string]*trieNode)
		}
		child := node.literal[head.lit]
		node.literal[head.lit] = insert(child, rest, route)
	case segWildcard:
		node.wildcard = insert(node.wildcard, rest, route)
	case segMulti:
		node.multi = insert(node.multi, rest, route)
	}
	return node
}

// removeRoutes returns a new trie rooted at a node equivalent to root with
// every Route along pattern's segment path removed that also matches the
// keep predicate (keep returns false for routes to drop). A node left with
// no routes and no children anywhere beneath it is pruned.
func removeRoutes(root *trieNode, segments []patternSegment, keep func(*Route) bool) *trieNode {
	if root == nil {
		return nil
	}
	node := root.clone()

	if len(segments) == 0 {
		filtered := node.routes[:0:0]
		for _, r := range node.routes {
			if keep(r) {
				filtered = append(filtered, r)
			}
		}
		node.routes = filtered
		return pruneIfEmpty(node)
	}

	head, rest := segments[0], segments[1:]
	switch head.kind {
	case segLiteral:
		child, ok := node.literal[head.lit]
		if !ok {
			return pruneIfEmpty(node)
		}
		newChild := removeRoutes(child, rest, keep)
		if newChild == nil {
			delete(node.literal, head.lit)
			if len(node.literal) == 0 {
				node.literal = nil
			}
		} else {
			node.literal[head.lit] = newChild
		}
	case segWildcard:
		node.wildcard = removeRoutes(node.wildcard, rest, keep)
	case segMulti:
		node.multi = removeRoutes(node.multi, rest, keep)
	}
	return pruneIfEmpty(node)
}

func pruneIfEmpty(n *trieNode) *trieNode {
	if n == nil {
		return nil
	}
	if len(n.routes) == 0 && len(n.literal) == 0 && n.wildcard == nil && n.multi == nil {
		return nil
	}
	return n
}
