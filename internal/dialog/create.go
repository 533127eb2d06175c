package dialog

import (
	"context"
	"log/slog"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/telegram/state"
)

func createPrompt(st string) string {
	switch st {
	case StateCreateDescription:
		return msgCreateAskDesc
	case StateCreatePrice:
		return msgCreateAskPrice
	}
	return msgCreateAskName
}

func (e *Engine) startCreate(ctx context.Context, userID int64) Reply {
	if err := e.begin(ctx, userID, FlowCreate, StateCreateName, draft{}); err != nil {
		return e.storeFailure(ctx, "save", err)
	}
	return reply(OutcomeOK, msgCreateAskName).with(KeyboardCancel)
}

// createText stores name and description verbatim; the price step commits.
func (e *Engine) createText(ctx context.Context, userID int64, sess *state.Session, text string) Reply {
	d := draftFromSession(sess)
	switch sess.State {
	case StateCreateName:
		d.Name = text
		if err := e.advance(ctx, userID, sess, d, StateCreateDescription); err != nil {
			return e.storeFailure(ctx, "save", err)
		}
		return reply(OutcomeOK, msgCreateAskDesc).with(KeyboardCancel)

	case StateCreateDescription:
		d.Description = &text
		if err := e.advance(ctx, userID, sess, d, StateCreatePrice); err != nil {
			return e.storeFailure(ctx, "save", err)
		}
		return reply(OutcomeOK, msgCreateAskPrice).with(KeyboardCancel)
	}

	price, err := ParsePrice(text)
	if err != nil {
		return reply(OutcomeInvalid, msgCreateBadPrice).with(KeyboardCancel)
	}
	d.Price, d.HasPrice = price, true
	return e.commitCreate(ctx, userID, d)
}

func (e *Engine) commitCreate(ctx context.Context, userID int64, d draft) Reply {
	e.clear(ctx, userID)
	created, err := e.catalog.CreateProduct(ctx, d.input())
	if err != nil {
		e.finish(ctx, FlowCreate, StateCreatePrice, "failed")
		return reply(OutcomeFail, apiError(err))
	}
	e.finish(ctx, FlowCreate, StateCreatePrice, "committed")
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "product.created",
		slog.Int64("product_id", created.ID),
	)
	return reply(OutcomeOK, createdMessage(created))
}
