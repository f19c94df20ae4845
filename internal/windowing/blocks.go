package windowing

import (
	"github.com/charmbracelet/log"

	"github.com/petasbytes/advisor-relay/memory"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupExchange
)

// Group describes a contiguous span of turns [Start, End) in the original slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into turns
	End   int // exclusive index into turns
}

// PinnedPrefix returns the number of leading system turns. These are never
// dropped from a window.
func PinnedPrefix(turns []memory.Turn) int {
	n := 0
	for n < len(turns) && turns[n].Role == memory.RoleSystem {
		n++
	}
	return n
}

// GroupTurns groups the turns after the pinned prefix into atomic units.
// Invariants:
// - An exchange is exactly two adjacent turns: user then assistant.
// - Anything else (a trailing user turn awaiting its reply, a stray
// system or assistant turn) is a singleton.
func GroupTurns(turns []memory.Turn) []Group {
	start := PinnedPrefix(turns)
	groups := make([]Group, 0, (len(turns)-start+1)/2)
	for i := start; i < len(turns); {
		if turns[i].Role == memory.RoleUser && i+1 < len(turns) && turns[i+1].Role == memory.RoleAssistant {
			groups = append(groups, Group{Kind: GroupExchange, Start: i, End: i + 2})
			i += 2
			continue
		}
		if turns[i].Role != memory.RoleUser || i+1 < len(turns) {
			log.Debug("windowing: singleton group", "idx", i, "role", turns[i].Role)
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}
