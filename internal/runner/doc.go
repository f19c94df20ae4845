// Package runner performs one completion step for a conversation.
//
// A step trims the conversation snapshot to the configured token budget,
// records a window_prepared event, and asks the Completer for a single
// non-streamed reply with fixed sampling parameters.
//
// Flow:
//
//	snapshot -> window(budget) -> provider.Complete -> reply text
package runner
