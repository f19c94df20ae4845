package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/petasbytes/advisor-relay/internal/provider"
	"github.com/petasbytes/advisor-relay/internal/telemetry"
	"github.com/petasbytes/advisor-relay/internal/windowing"
	"github.com/petasbytes/advisor-relay/memory"
)

// ErrOverBudget is returned when the newest exchange alone does not fit the token budget.
var ErrOverBudget = errors.New("windowing: newest turn exceeds token budget")

type Runner struct {
	Completer provider.Completer
	Model     string
	// Budget is the input token budget; values <= 0 send the whole conversation.
	Budget  int
	Counter windowing.TokenCounter
	Logger  *log.Logger
}

func New(c provider.Completer, model string, budget int, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Completer: c,
		Model:     model,
		Budget:    budget,
		Counter:   windowing.HeuristicCounter{},
		Logger:    logger.WithPrefix("runner"),
	}
}

// RunOneStep submits the budgeted window of turns and returns the reply text.
func (r *Runner) RunOneStep(ctx context.Context, turns []memory.Turn) (string, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)

	window, err := r.window(turnID, turns)
	if err != nil {
		return "", err
	}

	reply, err := r.Completer.Complete(ctx, window, provider.DefaultParams(r.Model))
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (r *Runner) window(turnID string, turns []memory.Turn) ([]memory.Turn, error) {
	if r.Budget <= 0 {
		return turns, nil
	}

	counter := r.Counter
	if counter == nil {
		counter = windowing.HeuristicCounter{}
	}
	window, stats := windowing.PrepareSendWindow(turns, r.Budget, counter)

	telemetry.Emit("window_prepared", map[string]any{
		"turn_id":            turnID,
		"model":              r.Model,
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"pinned":             stats.Pinned,
		"included_groups":    stats.IncludedGroups,
		"skipped_groups":     stats.SkippedGroups,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	r.logger().Debug("window prepared",
		"budget", stats.Budget, "est_total", stats.Total,
		"groups_in", stats.IncludedGroups, "groups_skip", stats.SkippedGroups)

	if stats.OverBudgetNewest {
		return nil, fmt.Errorf("%w (budget %d)", ErrOverBudget, r.Budget)
	}
	return window, nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
