package signal

import "sort"

// specificityRank gives literal > * > ** a strictly decreasing numeric
// rank so two patterns can be compared position by position (spec
// §4.3.4).
func specificityRank(k segmentKind) int {
	switch k {
	case segLiteral:
		return 2
	case segWildcard:
		return 1
	default: // segMulti
		return 0
	}
}

// compareSpecificity returns >0 if a is more specific than b, <0 if less,
// 0 if equal. Comparison walks both patterns' segment kinds left to right;
// the first differing rank decides. If every common position ties, the
// pattern with fewer segments is more specific (it matches only an exact
// length, where the longer one needed a wildcard/multi to cover the rest).
func compareSpecificity(a, b compiledPattern) int {
	n := len(a.segments)
	if len(b.segments) < n {
		n = len(b.segments)
	}
	for i := 0; i < n; i++ {
		ra := specificityRank(a.segments[i].kind)
		rb := specificityRank(b.segments[i].kind)
		if ra != rb {
			return ra - rb
		}
	}
	return len(b.segments) - len(a.segments)
}

// worklistKey dedupes (node, segment index) states during trie descent so
// a node reachable via several "**" splits is only visited once.
type worklistKey struct {
	node *trieNode
	idx  int
}

// collectMatches implements the trie descent of spec §4.3.3: given the
// signal's split type segments, walk the trie accumulating every Route
// whose pattern structurally matches.
func collectMatches(root *trieNode, segs []string) []*Route {
	n := len(segs)
	var matches []*Route
	seen := map[worklistKey]bool{}
	worklist := []worklistKey{{node: root, idx: 0}}

	for len(worklist) > 0 {
		state := worklist[0]
		worklist = worklist[1:]
		if state.node == nil || seen[state] {
			continue
		}
		seen[state] = true

		if state.idx == n {
			matches = append(matches, state.node.routes...)
			// A "**" child still matches here, consuming zero segments.
			if state.node.multi != nil {
				worklist = append(worklist, worklistKey{node: state.node.multi, idx: n})
			}
			continue
		}

		c := segs[state.idx]
		if child, ok := state.node.literal[c]; ok {
			worklist = append(worklist, worklistKey{node: child, idx: state.idx + 1})
		}
		if state.node.wildcard != nil {
			worklist = append(worklist, worklistKey{node: state.node.wildcard, idx: state.idx + 1})
		}
		if state.node.multi != nil {
			for j := state.idx; j <= n; j++ {
				worklist = append(worklist, worklistKey{node: state.node.multi, idx: j})
			}
		}
	}

	return matches
}

// evalGuard runs route's guard (if any) against s, recovering a panicking
// guard into a routing_error per spec §4.3.3/§7 ("guard exceptions are
// caught and normalized into routing_error").
func evalGuard(route *Route, s *Signal) (pass bool, err error) {
	if route.Guard == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			pass = false
			err = newRoutingErrorf("guard for pattern %q panicked: %v", route.Pattern, r)
		}
	}()
	return route.Guard(s), nil
}

// orderRoutes implements spec §4.3.4: sort matched routes by priority
// descending, then specificity descending, then insertion index ascending
// (stable tie-break), and flattens each route's Handler into the ordered
// result.
func orderRoutes(routes []*Route) []Handler {
	ordered := make([]*Route, len(routes))
	copy(ordered, routes)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if c := compareSpecificity(a.compiled, b.compiled); c != 0 {
			return c > 0
		}
		return a.insertionIndex < b.insertionIndex
	})

	var handlers []Handler
	for _, r := range ordered {
		handlers = append(handlers, flattenHandler(r.Handler)...)
	}
	return handlers
}
