package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/advisor-relay/memory"
)

// TokenCounter estimates input-token cost for turns or groups.
type TokenCounter interface {
	CountTurn(t memory.Turn) int
	CountGroup(g Group, all []memory.Turn) int
}

// HeuristicCounter is the default deterministic estimator: the rune count
// of the content plus a fixed per-turn overhead for role framing.
type HeuristicCounter struct{}

// Fixed per-turn overhead; changing this requires updating the guard test.
const turnOverhead = 4

func (HeuristicCounter) CountTurn(t memory.Turn) int {
	return utf8.RuneCountInString(t.Content) + turnOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Turn) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountTurn(all[i])
	}
	return total
}

// CountTurns sums the cost of every turn in turns.
func CountTurns(c TokenCounter, turns []memory.Turn) int {
	total := 0
	for _, t := range turns {
		total += c.CountTurn(t)
	}
	return total
}
