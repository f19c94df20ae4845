package windowing_test

import (
	"github.com/petasbytes/advisor-relay/internal/windowing"
	"github.com/petasbytes/advisor-relay/memory"
)

// Sys returns a system turn.
func Sys(text string) memory.Turn { return memory.Turn{Role: memory.RoleSystem, Content: text} }

// User returns a user turn.
func User(text string) memory.Turn { return memory.Turn{Role: memory.RoleUser, Content: text} }

// Asst returns an assistant turn.
func Asst(text string) memory.Turn { return memory.Turn{Role: memory.RoleAssistant, Content: text} }

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
