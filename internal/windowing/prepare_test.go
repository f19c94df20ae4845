package windowing_test

import (
	"testing"

	"github.com/petasbytes/advisor-relay/internal/windowing"
	"github.com/petasbytes/advisor-relay/memory"
)

func TestPrepareSendWindow_AllFit(t *testing.T) {
	// sys "p" = 5, G0 = (1+4)+(1+4) = 10, G1 = 5
	turns := []memory.Turn{Sys("p"), User("a"), Asst("b"), User("c")}

	window, stats := windowing.PrepareSendWindow(turns, 20, windowing.HeuristicCounter{})

	if len(window) != len(turns) {
		t.Fatalf("window size: got=%d want=%d", len(window), len(turns))
	}
	if stats.Total != 20 || stats.Pinned != 1 || stats.IncludedGroups != 2 || stats.SkippedGroups != 0 || stats.OverBudgetNewest {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_DropsOldestExchangeKeepsSystem(t *testing.T) {
	// sys = 5, G0 = 10 (oldest), G1 = 10, G2 = 5 (newest user turn)
	turns := []memory.Turn{Sys("p"), User("a"), Asst("b"), User("c"), Asst("d"), User("e")}

	window, stats := windowing.PrepareSendWindow(turns, 20, windowing.HeuristicCounter{})

	want := []memory.Turn{Sys("p"), User("c"), Asst("d"), User("e")}
	if len(window) != len(want) {
		t.Fatalf("window size: got=%d want=%d (%+v)", len(window), len(want), window)
	}
	for i := range want {
		if window[i] != want[i] {
			t.Fatalf("turn %d: got=%+v want=%+v", i, window[i], want[i])
		}
	}
	if stats.IncludedGroups != 2 || stats.SkippedGroups != 1 || stats.Total != 20 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_StopsAtFirstMiss(t *testing.T) {
	// G0 small but older than a group that does not fit: scanning stops, G0 is not revisited.
	turns := []memory.Turn{Sys("p"), User("x"), Asst("y"), User("long long"), Asst("reply"), User("z")}
	// sys 5, G0 10, G1 (9+4)+(5+4)=22, G2 5 -> budget 20 keeps sys+G2 only

	window, stats := windowing.PrepareSendWindow(turns, 20, windowing.HeuristicCounter{})

	if len(window) != 2 || window[0].Role != memory.RoleSystem || window[1].Content != "z" {
		t.Fatalf("unexpected window: %+v", window)
	}
	if stats.IncludedGroups != 1 || stats.SkippedGroups != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_NewestOverBudget(t *testing.T) {
	turns := []memory.Turn{Sys("p"), User("this is far too long")}

	window, stats := windowing.PrepareSendWindow(turns, 10, windowing.HeuristicCounter{})

	if len(window) != 0 || !stats.OverBudgetNewest || stats.IncludedGroups != 0 {
		t.Fatalf("unexpected result: window=%v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_PinnedOverBudget(t *testing.T) {
	turns := []memory.Turn{Sys("a very long persona prompt")}

	window, stats := windowing.PrepareSendWindow(turns, 5, windowing.HeuristicCounter{})

	if len(window) != 0 || !stats.OverBudgetNewest {
		t.Fatalf("unexpected result: window=%v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_NoCapacityBudget(t *testing.T) {
	window, stats := windowing.PrepareSendWindow([]memory.Turn{User("x")}, 0, windowing.HeuristicCounter{})

	if len(window) != 0 || !stats.OverBudgetNewest || stats.SkippedGroups != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_Empty(t *testing.T) {
	window, stats := windowing.PrepareSendWindow(nil, 123, windowing.HeuristicCounter{})
	if window != nil || stats.Budget != 123 || stats.Total != 0 || stats.OverBudgetNewest {
		t.Fatalf("unexpected result: window=%v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_DoesNotAliasInput(t *testing.T) {
	turns := []memory.Turn{Sys("p"), User("a")}

	window, _ := windowing.PrepareSendWindow(turns, 100, windowing.HeuristicCounter{})
	window[0].Content = "changed"

	if turns[0].Content != "p" {
		t.Fatalf("input mutated: %+v", turns[0])
	}
}
