// Package windowing trims a conversation to a token budget before it is
// sent upstream. The stored conversation is never modified.
package windowing

import (
	"github.com/charmbracelet/log"

	"github.com/petasbytes/advisor-relay/memory"
)

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated tokens for the pinned prefix and included groups.
// - Budget: the input token budget used.
// - Pinned: number of leading system turns kept unconditionally.
// - IncludedGroups: number of groups included.
// - SkippedGroups: total groups minus IncludedGroups.
// - OverBudgetNewest: true when the pinned prefix plus the newest group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	Pinned           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns the turns (oldest→newest) that fit within budget
// using the TokenCounter, without splitting groups.
//
// Rules:
// - Leading system turns are always kept and counted first.
// - Include whole groups scanning newest→oldest while total ≤ budget.
// - If the newest group does not fit next to the pinned prefix, return an empty window and set OverBudgetNewest.
// - If budget ≤ 0, return an empty window (OverBudgetNewest set when any turns exist).
func PrepareSendWindow(turns []memory.Turn, budget int, c TokenCounter) ([]memory.Turn, Stats) {
	if len(turns) == 0 {
		return nil, Stats{Budget: budget}
	}

	pinned := PinnedPrefix(turns)
	groups := GroupTurns(turns)

	if budget <= 0 {
		return nil, Stats{Budget: budget, Pinned: pinned, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	total := CountTurns(c, turns[:pinned])
	if total > budget {
		log.Debug("windowing: pinned prefix over budget", "budget", budget, "cost", total)
		return nil, Stats{Budget: budget, Pinned: pinned, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	included := 0
	startIdx := len(groups) // exclusive sentinel; lowered as groups are included

	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], turns)
		if included == 0 && total+cost > budget {
			log.Debug("windowing: newest group over budget", "budget", budget, "cost", cost, "pinned_cost", total)
			return nil, Stats{
				Budget:           budget,
				Pinned:           pinned,
				SkippedGroups:    len(groups),
				OverBudgetNewest: true,
			}
		}
		if total+cost > budget {
			break
		}
		total += cost
		included++
		startIdx = gi
	}

	window := make([]memory.Turn, 0, len(turns))
	window = append(window, turns[:pinned]...)
	if included > 0 {
		window = append(window, turns[groups[startIdx].Start:]...)
	}

	return window, Stats{
		Total:          total,
		Budget:         budget,
		Pinned:         pinned,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}
