// Package telemetry writes structured events as JSON lines when
// RELAY_OBSERVE_JSON=1. Events carry counts and identifiers only, never
// message text.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// mu serializes appends from concurrent request handlers.
var mu sync.Mutex

// Emit writes a single JSON line to <artifacts>/events.jsonl.
// It augments fields with RFC3339Nano time and the event name.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		log.Warn("telemetry: marshal", "event", name, "err", err)
		return
	}

	dir := ArtifactsDir()
	path := filepath.Join(dir, "events.jsonl")

	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("telemetry: mkdir", "dir", dir, "err", err)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn("telemetry: open", "path", path, "err", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		log.Warn("telemetry: write", "path", path, "err", err)
	}
}
