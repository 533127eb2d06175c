package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/internal/catalog"
)

// CommandInfo describes one chat command for help text and the Telegram menu.
type CommandInfo struct {
	Name        string
	Usage       string
	Description string
	Hidden      bool
	Aliases     []string
}

// Commands lists the supported commands in menu order.
var Commands = []CommandInfo{
	{Name: CmdStart, Usage: "/start", Description: "Show this help", Aliases: []string{CmdHelp}},
	{Name: CmdList, Usage: "/list", Description: "Show all products"},
	{Name: CmdAdd, Usage: "/add", Description: "Add a new product"},
	{Name: CmdGet, Usage: "/get <id>", Description: "Show product details"},
	{Name: CmdUpdate, Usage: "/update <id>", Description: "Update a product"},
	{Name: CmdDelete, Usage: "/delete <id>", Description: "Delete a product"},
	{Name: CmdCancel, Usage: "/cancel", Description: "Cancel the current operation"},
	{Name: CmdSkip, Usage: "/skip", Description: "Keep the current value while updating", Hidden: true},
}

func (e *Engine) runCommand(ctx context.Context, in Input) Reply {
	switch in.Command {
	case CmdStart, CmdHelp:
		return reply(OutcomeOK, helpText())
	case CmdList:
		return e.list(ctx)
	case CmdGet:
		return e.get(ctx, in)
	case CmdDelete:
		return e.delete(ctx, in)
	case CmdAdd:
		return e.startCreate(ctx, in.UserID)
	case CmdUpdate:
		return e.startUpdate(ctx, in)
	case CmdSkip:
		return reply(OutcomeOK, msgNothingSkip)
	}
	return reply(OutcomeUsage, unknownCommand(in.Command))
}

func (e *Engine) list(ctx context.Context) Reply {
	products, err := e.catalog.ListProducts(ctx)
	if err != nil {
		return reply(OutcomeFail, fmt.Sprintf("Could not fetch products: %v", err))
	}
	if len(products) == 0 {
		return reply(OutcomeOK, msgNoProducts)
	}
	return reply(OutcomeOK, renderList(products)...)
}

func (e *Engine) get(ctx context.Context, in Input) Reply {
	id, err := parseID(in.Args)
	if err != nil {
		return reply(OutcomeUsage, usageHint(CmdGet))
	}
	p, err := e.catalog.GetProduct(ctx, id)
	switch {
	case catalog.IsNotFound(err):
		return reply(OutcomeNotFound, notFound(id))
	case err != nil:
		return reply(OutcomeFail, fmt.Sprintf("Could not fetch product %d: %v", id, err))
	}
	return reply(OutcomeOK, renderProduct(p))
}

func (e *Engine) delete(ctx context.Context, in Input) Reply {
	id, err := parseID(in.Args)
	if err != nil {
		return reply(OutcomeUsage, usageHint(CmdDelete))
	}
	err = e.catalog.DeleteProduct(ctx, id)
	switch {
	case catalog.IsNotFound(err):
		return reply(OutcomeNotFound, notFound(id))
	case err != nil:
		return reply(OutcomeFail, fmt.Sprintf("Could not delete product %d: %v", id, err))
	}
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "product.deleted",
		slog.Int64("product_id", id),
	)
	return reply(OutcomeOK, fmt.Sprintf("🗑️ Product %d deleted.", id))
}
