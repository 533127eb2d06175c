// Package dialog implements the chat command surface and the two multi-step
// product dialogs (create and update) on top of a per-user state store.
package dialog

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/metrics"
	"github.com/m3rciful/catalogbot/core/telegram/state"
	"github.com/m3rciful/catalogbot/internal/catalog"
)

// Catalog is the remote product store used by the engine.
type Catalog interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id int64, in catalog.ProductInput) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Keyboard selects the inline buttons attached to a reply.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardCancel
	KeyboardSkipCancel
)

// Outcome values carried by Reply for logging.
const (
	OutcomeOK       = "ok"
	OutcomeUsage    = "usage"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeFail     = "fail"
)

// Reply is what the bot sends back: one or more messages, delivered in order.
type Reply struct {
	Messages []string
	Keyboard Keyboard
	Outcome  string
}

func reply(outcome string, msgs ...string) Reply {
	return Reply{Messages: msgs, Outcome: outcome}
}

func (r Reply) with(kb Keyboard) Reply {
	r.Keyboard = kb
	return r
}

// Engine routes inputs to commands and active dialogs. Inputs of one user are handled
// one at a time; different users never wait on each other.
type Engine struct {
	catalog Catalog
	store   state.Store
	users   userLocks
}

// NewEngine returns an engine over the given catalog and session store.
func NewEngine(c Catalog, st state.Store) *Engine {
	return &Engine{catalog: c, store: st}
}

// InProgress reports whether the user has an active dialog. Store errors count as no dialog.
func (e *Engine) InProgress(ctx context.Context, userID int64) bool {
	_, ok, err := e.store.Get(ctx, userID)
	return err == nil && ok
}

// Dispatch handles one input:
//  1. /cancel is always handled first.
//  2. With an active dialog, free text and /skip go to the current state; /add and /update
//     are rejected; other commands run without touching the dialog.
//  3. Otherwise the input is routed by command name.
func (e *Engine) Dispatch(ctx context.Context, in Input) Reply {
	start := time.Now()
	r := e.dispatchLocked(ctx, in)
	if r.Outcome == "" {
		r.Outcome = OutcomeOK
	}
	logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "dialog.dispatch",
		slog.String("command", in.Command),
		slog.String("outcome", r.Outcome),
		slog.Int("messages", len(r.Messages)),
		slog.Duration("duration", time.Since(start)),
	)
	return r
}

func (e *Engine) dispatchLocked(ctx context.Context, in Input) Reply {
	unlock := e.users.lock(in.UserID)
	defer unlock()
	return e.dispatch(ctx, in)
}

func (e *Engine) dispatch(ctx context.Context, in Input) Reply {
	if in.Command == CmdCancel {
		return e.cancel(ctx, in.UserID)
	}

	sess, active, err := e.store.Get(ctx, in.UserID)
	if err != nil {
		return e.storeFailure(ctx, "get", err)
	}

	if active {
		switch in.Command {
		case "":
			return e.onText(ctx, in.UserID, sess, in.Text)
		case CmdSkip:
			return e.onSkip(ctx, in.UserID, sess)
		case CmdAdd, CmdUpdate:
			return reply(OutcomeUsage, msgBusy).with(keyboardFor(sess.State))
		}
	} else if in.Command == "" {
		return reply(OutcomeUsage, msgFreeTextHint)
	}
	return e.runCommand(ctx, in)
}

func (e *Engine) onText(ctx context.Context, userID int64, sess *state.Session, text string) Reply {
	switch sess.State {
	case StateCreateName, StateCreateDescription, StateCreatePrice:
		return e.createText(ctx, userID, sess, text)
	case StateUpdateName, StateUpdateDescription, StateUpdatePrice:
		return e.updateText(ctx, userID, sess, text)
	}
	return e.corrupt(ctx, userID, sess)
}

func (e *Engine) onSkip(ctx context.Context, userID int64, sess *state.Session) Reply {
	switch sess.State {
	case StateCreateName, StateCreateDescription, StateCreatePrice:
		return reply(OutcomeUsage, msgSkipOnlyUpdate, createPrompt(sess.State)).with(KeyboardCancel)
	case StateUpdateName, StateUpdateDescription, StateUpdatePrice:
		return e.updateSkip(ctx, userID, sess)
	}
	return e.corrupt(ctx, userID, sess)
}

func (e *Engine) cancel(ctx context.Context, userID int64) Reply {
	sess, active, err := e.store.Get(ctx, userID)
	if err != nil {
		return e.storeFailure(ctx, "get", err)
	}
	if !active {
		return reply(OutcomeOK, msgNothingCancel)
	}
	if err := e.store.Clear(ctx, userID); err != nil {
		return e.storeFailure(ctx, "clear", err)
	}
	e.finish(ctx, sess.Flow, sess.State, "cancelled")
	return reply(OutcomeOK, msgCancelled)
}

// corrupt drops a session whose state this build does not know.
func (e *Engine) corrupt(ctx context.Context, userID int64, sess *state.Session) Reply {
	logger.LogEvent(ctx, logger.Dialog, slog.LevelWarn, "dialog.unknown_state",
		slog.String("flow", sess.Flow),
		slog.String("state", sess.State),
	)
	e.clear(ctx, userID)
	return reply(OutcomeFail, msgInternal)
}

// begin stores a fresh session for flow in its first state.
func (e *Engine) begin(ctx context.Context, userID int64, flow, first string, d draft) error {
	sess := &state.Session{Flow: flow, State: first, Data: d.data()}
	if err := e.store.Save(ctx, userID, sess); err != nil {
		return err
	}
	e.transitioned(ctx, flow, "", first)
	return nil
}

// advance persists d and moves sess to next.
func (e *Engine) advance(ctx context.Context, userID int64, sess *state.Session, d draft, next string) error {
	from := sess.State
	sess.State = next
	sess.Data = d.data()
	if err := e.store.Save(ctx, userID, sess); err != nil {
		return err
	}
	e.transitioned(ctx, sess.Flow, from, next)
	return nil
}

// clear removes the session before a commit; a failure is logged and the commit proceeds.
func (e *Engine) clear(ctx context.Context, userID int64) {
	if err := e.store.Clear(ctx, userID); err != nil {
		logger.LogEvent(ctx, logger.Dialog, slog.LevelError, "dialog.clear_failed",
			slog.String("err", err.Error()),
		)
	}
}

func (e *Engine) transitioned(ctx context.Context, flow, from, to string) {
	metrics.IncDialogTransition(flow, to)
	logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "dialog.transition",
		slog.String("flow", flow),
		slog.String("from_state", from),
		slog.String("to_state", to),
	)
}

func (e *Engine) finish(ctx context.Context, flow, lastState, outcome string) {
	metrics.IncDialogCompletion(flow, outcome)
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "dialog.finished",
		slog.String("flow", flow),
		slog.String("state", lastState),
		slog.String("result", outcome),
	)
}

func (e *Engine) storeFailure(ctx context.Context, op string, err error) Reply {
	logger.LogEvent(ctx, logger.State, slog.LevelError, "state.failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
	return reply(OutcomeFail, msgInternal)
}

func keyboardFor(st string) Keyboard {
	switch st {
	case StateUpdateName, StateUpdateDescription, StateUpdatePrice:
		return KeyboardSkipCancel
	case StateCreateName, StateCreateDescription, StateCreatePrice:
		return KeyboardCancel
	}
	return KeyboardNone
}
