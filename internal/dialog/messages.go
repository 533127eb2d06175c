package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/catalogbot/core/telegram/format"
	"github.com/m3rciful/catalogbot/internal/catalog"
)

// maxMessageLen keeps list replies under Telegram's 4096 character limit.
const maxMessageLen = 4000

// Field limits keep any single product message under maxMessageLen.
const (
	maxNameLen        = 256
	maxDescriptionLen = 3000
	maxErrorLen       = 1000
)

const (
	msgCancelled      = "Action cancelled."
	msgNothingCancel  = "Nothing to cancel."
	msgNothingSkip    = "Nothing to skip."
	msgSkipOnlyUpdate = "/skip only works while updating a product."
	msgBusy           = "Finish or /cancel your current operation first."
	msgNoProducts     = "No products yet. Add the first one with /add."
	msgListHeader     = "🛒 Products:\n\n"
	msgListSeparator  = "--------------------"
	msgNoDescription  = "No description"
	msgInternal       = "Something went wrong, please try again."
	msgFreeTextHint   = "I don't know what to do with that. Send /start to see the available commands."

	msgCreateAskName  = "Send the name of the new product."
	msgCreateAskDesc  = "Great! Now send the description."
	msgCreateAskPrice = "Description saved. Now send the price (a number, e.g. 9.99 or 12,50)."
	msgCreateBadPrice = "The price must be a number, e.g. 9.99 or 12,50. Try again or /cancel."

	msgUpdateBadPrice = "The price must be a number, e.g. 9.99 or 12,50. Try again or /skip."
	msgUpdateSaving   = "Saving product..."
	msgUpdated        = "✅ Product updated!"
)

func helpText() string {
	var b strings.Builder
	b.WriteString("Hi! I manage the product catalog.\n\nAvailable commands:\n")
	for _, c := range Commands {
		if c.Hidden {
			continue
		}
		b.WriteString(c.Usage + " - " + c.Description + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func describe(d *string) string {
	return format.Truncate(format.DerefString(d, msgNoDescription), maxDescriptionLen)
}

func shortName(name string) string {
	return format.Truncate(name, maxNameLen)
}

func usageHint(cmd string) string {
	return fmt.Sprintf("Please specify a product id. Example: /%s 1", cmd)
}

func unknownCommand(cmd string) string {
	return fmt.Sprintf("Unknown command /%s. Send /start to see the available commands.", cmd)
}

func notFound(id int64) string {
	return fmt.Sprintf("Product with ID %d not found.", id)
}

func apiError(err error) string {
	return "API error: " + format.Truncate(err.Error(), maxErrorLen)
}

func renderProduct(p catalog.Product) string {
	return fmt.Sprintf("📦 Product #%d\n🏷️ Name: %s\n📝 Description: %s\n💰 Price: %s",
		p.ID, shortName(p.Name), describe(p.Description), formatPrice(p.Price))
}

func renderListBlock(p catalog.Product) string {
	return fmt.Sprintf("🆔 ID: %d\n🏷️ Name: %s\n💰 Price: %s\n%s\n",
		p.ID, shortName(p.Name), formatPrice(p.Price), msgListSeparator)
}

// renderList splits the product list into as few messages as fit the length limit.
// A single product block is never split.
func renderList(products []catalog.Product) []string {
	var (
		out []string
		b   strings.Builder
	)
	b.WriteString(msgListHeader)
	for _, p := range products {
		block := renderListBlock(p)
		if b.Len() > 0 && b.Len()+len(block) > maxMessageLen {
			out = append(out, b.String())
			b.Reset()
		}
		b.WriteString(block)
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

func createdMessage(p catalog.Product) string {
	return fmt.Sprintf("✅ Product added! ID: %d", p.ID)
}

func updateIntro(d draft) string {
	return fmt.Sprintf("Updating product '%s'.\n\nSend a new name or /skip to keep the current one.", shortName(d.Name))
}

func updateAskDescription(d draft, changed bool) string {
	lead := "Name kept."
	if changed {
		lead = "Name updated."
	}
	return fmt.Sprintf("%s Current description: %s\nSend a new description or /skip.", lead, describe(d.Description))
}

func updateAskPrice(d draft, changed bool) string {
	lead := "Description kept."
	if changed {
		lead = "Description updated."
	}
	return fmt.Sprintf("%s Current price: %s\nSend a new price or /skip.", lead, formatPrice(d.Price))
}

func updatePriceAck(changed bool) string {
	if changed {
		return "Price updated. " + msgUpdateSaving
	}
	return "Price kept. " + msgUpdateSaving
}
