package telemetry

import (
	"os"
)

const defaultArtifactsDir = ".relay"

// observeEnabled is read once at process start.
var observeEnabled = os.Getenv("RELAY_OBSERVE_JSON") == "1"

// ObserveEnabled reports whether JSONL emission is enabled.
func ObserveEnabled() bool {
	// A live env value overrides the startup read.
	if v, ok := os.LookupEnv("RELAY_OBSERVE_JSON"); ok {
		return v == "1"
	}
	return observeEnabled
}

// ArtifactsDir returns the directory events.jsonl is written to.
func ArtifactsDir() string {
	if v := os.Getenv("RELAY_ARTIFACTS_DIR"); v != "" {
		return v
	}
	return defaultArtifactsDir
}
