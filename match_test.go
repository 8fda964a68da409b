package signal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareSpecificity_LiteralBeatsWildcard(t *testing.T) {
	lit := mustCompile(t, "user.created")
	wild := mustCompile(t, "user.*")

	require.Greater(t, compareSpecificity(lit, wild), 0)
	require.Less(t, compareSpecificity(wild, lit), 0)
}

func TestCompareSpecificity_WildcardBeatsMulti(t *testing.T) {
	wild := mustCompile(t, "user.*")
	multi := mustCompile(t, "user.**")

	require.Greater(t, compareSpecificity(wild, multi), 0)
}

func TestCompareSpecificity_ShorterWinsWhenPrefixTies(t *testing.T) {
	// "user.**" and "user.*.created" share the literal "user" prefix,
	// then diverge ** vs *; ** loses outright before length matters, but a
	// pattern that is a strict, all-tied prefix of a longer one is still
	// more specific than the longer one.
	short := mustCompile(t, "user")
	long := mustCompile(t, "user.**")

	require.Greater(t, compareSpecificity(short, long), 0)
}

func TestCompareSpecificity_Equal(t *testing.T) {
	a := mustCompile(t, "user.created")
	b := mustCompile(t, "order.created")

	require.Equal(t, 0, compareSpecificity(a, b))
}

func TestCollectMatches_StaticMatch(t *testing.T) {
	c := mustCompile(t, "user.created")
	route := &Route{Pattern: "user.created", Handler: Instruction{Action: "add"}, compiled: c}
	root := insert(emptyTrieNode(), c.segments, route)

	matches := collectMatches(root, []string{"user", "created"})
	require.Len(t, matches, 1)
	require.Same(t, route, matches[0])
}

func TestCollectMatches_MultiWildcardMatchesAnyDepth(t *testing.T) {
	c := mustCompile(t, "order.**.completed")
	route := &Route{Pattern: "order.**.completed", Handler: Instruction{Action: "sub"}, compiled: c}
	root := insert(emptyTrieNode(), c.segments, route)

	matches := collectMatches(root, []string{"order", "123", "payment", "completed"})
	require.Len(t, matches, 1)
}

func TestCollectMatches_BareMultiMatchesAnyType(t *testing.T) {
	c := mustCompile(t, "**")
	route := &Route{Pattern: "**", Handler: Instruction{Action: "catch"}, compiled: c}
	root := insert(emptyTrieNode(), c.segments, route)

	matches := collectMatches(root, []string{"anything", "at", "all"})
	require.Len(t, matches, 1)
}

func TestCollectMatches_NoMatchReturnsEmpty(t *testing.T) {
	c := mustCompile(t, "user.created")
	route := &Route{Pattern: "user.created", Handler: Instruction{Action: "add"}, compiled: c}
	root := insert(emptyTrieNode(), c.segments, route)

	matches := collectMatches(root, []string{"order", "created"})
	require.Empty(t, matches)
}

func TestEvalGuard_NilGuardPasses(t *testing.T) {
	route := &Route{Pattern: "x"}
	sig := Must(Fields{"type": "x", "source": "y"})

	pass, err := evalGuard(route, sig)
	require.NoError(t, err)
	require.True(t, pass)
}

func TestEvalGuard_PanicBecomesRoutingError(t *testing.T) {
	route := &Route{Pattern: "x", Guard: func(s *Signal) bool {
		panic("guard exploded")
	}}
	sig := Must(Fields{"type": "x", "source": "y"})

	pass, err := evalGuard(route, sig)
	require.False(t, pass)
	require.Error(t, err)
	require.Equal(t, KindRoutingError, ErrorKind(err))
}

// S6 — overlap ordering.
func TestOrderRoutes_S6OverlapOrdering(t *testing.T) {
	catchAll, _ := NewRoute("**", Instruction{Action: "CatchAll"}, WithPriority(-100))
	a1, _ := NewRoute("*.*.created", Instruction{Action: "A1"})
	a2, _ := NewRoute("user.**", Instruction{Action: "A2"})
	a3, _ := NewRoute("user.*.created", Instruction{Action: "A3"})
	a4, _ := NewRoute("user.123.created", Instruction{Action: "A4"})

	routes := []*Route{catchAll, a1, a2, a3, a4}
	for i, r := range routes {
		r.insertionIndex = uint64(i)
	}

	handlers := orderRoutes(routes)
	var order []string
	for _, h := range handlers {
		order = append(order, h.(Instruction).Action)
	}

	require.Equal(t, []string{"A4", "A3", "A2", "A1", "CatchAll"}, order)
}
