// Package relay runs a chat exchange: log the user message, extend the
// session's conversation, ask the provider for a reply, then log and record
// the reply. Persistence is best effort; completion failures are returned
// unchanged so the caller can surface the provider's own description.
package relay

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/petasbytes/advisor-relay/internal/metrics"
	"github.com/petasbytes/advisor-relay/internal/store"
	"github.com/petasbytes/advisor-relay/internal/telemetry"
	"github.com/petasbytes/advisor-relay/memory"
)

// ErrEmptyMessage is returned for a missing or empty message.
var ErrEmptyMessage = errors.New("no message provided")

// MessageLog is the durable side of an exchange.
type MessageLog interface {
	Append(ctx context.Context, sessionID string, role memory.Role, content string) store.Result
}

// Stepper produces one assistant reply for a conversation snapshot.
type Stepper interface {
	RunOneStep(ctx context.Context, turns []memory.Turn) (string, error)
}

// Outcome describes a completed exchange.
type Outcome struct {
	Reply   string
	Session string
	TurnID  string
	// PersistFailures counts log appends that failed during the exchange.
	PersistFailures int
}

type Relay struct {
	log      MessageLog
	sessions *memory.Registry
	runner   Stepper
	logger   *log.Logger
}

func New(messages MessageLog, sessions *memory.Registry, runner Stepper, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{
		log:      messages,
		sessions: sessions,
		runner:   runner,
		logger:   logger.WithPrefix("relay"),
	}
}

// Chat runs one exchange for the session carried by ctx.
//
// On a completion error the user turn stays in both the log and the
// conversation and no assistant turn is recorded.
func (r *Relay) Chat(ctx context.Context, message string) (Outcome, error) {
	if message == "" {
		return Outcome{}, ErrEmptyMessage
	}

	// A caller going away does not cancel the exchange; the provider
	// client's own timeouts still apply.
	ctx = context.WithoutCancel(ctx)

	session := memory.SessionFromContext(ctx)
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	out := Outcome{Session: session, TurnID: turnID}

	conv := r.sessions.Get(session)
	start := time.Now()

	var err error
	conv.Exclusive(func() {
		telemetry.EmitLocalFeatures(ctx, message)

		r.persist(ctx, &out, memory.RoleUser, message)
		conv.AppendUser(message)

		var reply string
		reply, err = r.runner.RunOneStep(ctx, conv.Snapshot())
		if err != nil {
			return
		}

		r.persist(ctx, &out, memory.RoleAssistant, reply)
		conv.AppendAssistant(reply)
		out.Reply = reply
	})

	if err != nil {
		r.logger.Error("completion failed", "session", session, "turn_id", turnID, "err", err)
		telemetry.Emit("completion_failed", map[string]any{
			"turn_id": turnID,
			"session": session,
			"error":   err.Error(),
		})
		return out, err
	}

	telemetry.Emit("chat_exchange", map[string]any{
		"turn_id":          turnID,
		"session":          session,
		"duration_ms":      time.Since(start).Milliseconds(),
		"turns":            conv.Len(),
		"persist_failures": out.PersistFailures,
		"reply":            metrics.CountFeatures(out.Reply).Fields(),
	})
	return out, nil
}

func (r *Relay) persist(ctx context.Context, out *Outcome, role memory.Role, content string) {
	res := r.log.Append(ctx, out.Session, role, content)
	if res.OK() {
		return
	}
	out.PersistFailures++
	telemetry.Emit("persist_failed", map[string]any{
		"turn_id": out.TurnID,
		"session": out.Session,
		"role":    string(role),
		"error":   res.Err.Error(),
	})
}
