// Package memory holds in-process conversation state.
//
// State model:
//   - Each conversation starts with exactly one system turn carrying PersonaPrompt.
//   - A successful exchange appends a user turn, then an assistant turn.
//   - Nothing here is persisted; a restart begins from the persona prompt again.
//     The durable message log lives in internal/store.
package memory
