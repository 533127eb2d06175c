package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/telegram/state"
	"github.com/m3rciful/catalogbot/internal/catalog"
)

// startUpdate loads the product and enters update.awaiting_name. No session exists on failure.
func (e *Engine) startUpdate(ctx context.Context, in Input) Reply {
	id, err := parseID(in.Args)
	if err != nil {
		return reply(OutcomeUsage, usageHint(CmdUpdate))
	}
	p, err := e.catalog.GetProduct(ctx, id)
	switch {
	case catalog.IsNotFound(err):
		return reply(OutcomeNotFound, notFound(id))
	case err != nil:
		return reply(OutcomeFail, fmt.Sprintf("Could not load product %d: %v", id, err))
	}

	d := draftFromProduct(p)
	d.ID = id
	if err := e.begin(ctx, in.UserID, FlowUpdate, StateUpdateName, d); err != nil {
		return e.storeFailure(ctx, "save", err)
	}
	return reply(OutcomeOK, updateIntro(d)).with(KeyboardSkipCancel)
}

// updateText overwrites the current field. A bad price re-prompts and keeps the state.
func (e *Engine) updateText(ctx context.Context, userID int64, sess *state.Session, text string) Reply {
	d := draftFromSession(sess)
	switch sess.State {
	case StateUpdateName:
		d.Name = text
		return e.updateStep(ctx, userID, sess, d, StateUpdateDescription, updateAskDescription(d, true))
	case StateUpdateDescription:
		d.Description = &text
		return e.updateStep(ctx, userID, sess, d, StateUpdatePrice, updateAskPrice(d, true))
	}

	price, err := ParsePrice(text)
	if err != nil {
		return reply(OutcomeInvalid, msgUpdateBadPrice).with(KeyboardSkipCancel)
	}
	d.Price, d.HasPrice = price, true
	return e.commitUpdate(ctx, userID, d, updatePriceAck(true))
}

// updateSkip keeps the current field value and moves on.
func (e *Engine) updateSkip(ctx context.Context, userID int64, sess *state.Session) Reply {
	d := draftFromSession(sess)
	switch sess.State {
	case StateUpdateName:
		return e.updateStep(ctx, userID, sess, d, StateUpdateDescription, updateAskDescription(d, false))
	case StateUpdateDescription:
		return e.updateStep(ctx, userID, sess, d, StateUpdatePrice, updateAskPrice(d, false))
	}
	return e.commitUpdate(ctx, userID, d, updatePriceAck(false))
}

func (e *Engine) updateStep(ctx context.Context, userID int64, sess *state.Session, d draft, next, prompt string) Reply {
	if err := e.advance(ctx, userID, sess, d, next); err != nil {
		return e.storeFailure(ctx, "save", err)
	}
	return reply(OutcomeOK, prompt).with(KeyboardSkipCancel)
}

// commitUpdate clears the session and sends the draft without its id. The session is
// gone whatever the outcome; retrying means starting over with /update.
func (e *Engine) commitUpdate(ctx context.Context, userID int64, d draft, ack string) Reply {
	e.clear(ctx, userID)
	_, err := e.catalog.UpdateProduct(ctx, d.ID, d.input())
	switch {
	case catalog.IsNotFound(err):
		e.finish(ctx, FlowUpdate, StateUpdatePrice, "failed")
		return reply(OutcomeNotFound, ack, notFound(d.ID))
	case err != nil:
		e.finish(ctx, FlowUpdate, StateUpdatePrice, "failed")
		return reply(OutcomeFail, ack, apiError(err))
	}
	e.finish(ctx, FlowUpdate, StateUpdatePrice, "committed")
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "product.updated",
		slog.Int64("product_id", d.ID),
	)
	return reply(OutcomeOK, ack, msgUpdated)
}
