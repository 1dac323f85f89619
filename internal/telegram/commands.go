package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"smart-grocery/internal/app"
	"smart-grocery/internal/cooccurrence"
	"smart-grocery/internal/inventory"
	"smart-grocery/internal/logging"
	"smart-grocery/internal/metrics"
	"smart-grocery/internal/recommend"
	"smart-grocery/internal/shared"
	"smart-grocery/internal/substitution"
)

const helpText = "🛒 *Smart Grocery*\n\n" +
	"/list - show the inventory\n" +
	"/expiring [days] - items expiring soon\n" +
	"/recommend milk, cereal - what else to buy\n" +
	"/suggest white rice - healthier alternative\n" +
	"/bought milk, eggs - record a purchase\n" +
	"/health - system report"

// commands turns chat text into replies against the application core.
type commands struct {
	app *app.App
}

func newCommands(a *app.App) *commands {
	return &commands{app: a}
}

func (c *commands) handle(ctx context.Context, text string) string {
	cmd, args := splitCommand(text)
	switch cmd {
	case "/list":
		return formatItems(c.app.Inventory.List())
	case "/expiring":
		return c.expiring(args)
	case "/recommend":
		return c.recommend(args)
	case "/suggest":
		return c.suggest(ctx, args)
	case "/bought":
		return c.bought(ctx, args)
	case "/health":
		return c.health()
	default:
		return helpText
	}
}

func (c *commands) expiring(args string) string {
	days := c.app.Config().ExpiryHorizonDays
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			return "❌ Usage: /expiring [days]"
		}
		days = n
	}
	items, err := c.app.Inventory.ExpiringWithin(days)
	if err != nil {
		return c.errorText("expiring", err)
	}
	return formatExpiring(items, days, c.app.Inventory.DaysLeft)
}

func (c *commands) recommend(args string) string {
	current := splitList(args)
	if len(current) == 0 {
		return "❌ Usage: /recommend milk, cereal"
	}
	recs, err := c.app.Recommender.Recommend(current, c.app.Config().RecommendTopK)
	if err != nil {
		return c.errorText("recommend", err)
	}
	return formatRecommendations(recs)
}

func (c *commands) suggest(ctx context.Context, args string) string {
	s, err := c.app.Resolver.Suggest(ctx, args)
	if err != nil {
		if shared.IsValidation(err) {
			return "❌ Usage: /suggest white rice"
		}
		return c.errorText("suggest", err)
	}
	return formatSuggestion(s)
}

func (c *commands) bought(ctx context.Context, args string) string {
	basket := splitList(args)
	if _, err := c.app.Journal.Record(ctx, basket); err != nil {
		if shared.IsValidation(err) {
			return "❌ Usage: /bought milk, eggs"
		}
		return c.errorText("bought", err)
	}
	return fmt.Sprintf("✅ Recorded a basket of %d item(s).", len(cooccurrence.NormalizeBasket(basket)))
}

func (c *commands) health() string {
	var usage []metrics.DailyUsage
	if c.app.Metrics != nil {
		var err error
		if usage, err = c.app.Metrics.GetDailyUsage(7); err != nil {
			return c.errorText("health", err)
		}
	}
	return formatHealth(usage, c.app.Health())
}

func (c *commands) errorText(funcName string, err error) string {
	logging.LogError(c.app.Logger(), "telegram", funcName, "command failed", nil, err)
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error:*\n```\n%v\n```", safeErr)
}

// splitCommand separates "/cmd@botname rest" into "/cmd" and "rest".
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	cmd, args, _ := strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatItems(items []inventory.Item) string {
	if len(items) == 0 {
		return "🧺 Your inventory is empty."
	}
	var sb strings.Builder
	sb.WriteString("🧺 *Inventory*\n\n")
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("• *%s*", escape(it.Name)))
		if it.Category != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", escape(it.Category)))
		}
		sb.WriteString(fmt.Sprintf(" - expires %s\n", it.ExpiryDate))
	}
	return sb.String()
}

func formatExpiring(items []inventory.Item, days int, daysLeft func(inventory.Item) int) string {
	if len(items) == 0 {
		return fmt.Sprintf("✅ Nothing expires within %d day(s).", days)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏰ *%d item(s) expiring within %d day(s)*\n\n", len(items), days))
	for _, it := range items {
		left := daysLeft(it)
		when := fmt.Sprintf("in %d day(s)", left)
		if left == 0 {
			when = "today"
		}
		sb.WriteString(fmt.Sprintf("• *%s* - %s (%s)\n", escape(it.Name), when, it.ExpiryDate))
	}
	return sb.String()
}

func formatRecommendations(recs []recommend.Recommendation) string {
	if len(recs) == 0 {
		return "🤷 No recommendations yet. Record some purchases with /bought."
	}
	var sb strings.Builder
	sb.WriteString("💡 *You might also need*\n\n")
	for _, r := range recs {
		sb.WriteString(fmt.Sprintf("• %s (%d)\n", escape(r.Name), r.Score))
	}
	return sb.String()
}

func formatSuggestion(s substitution.Suggestion) string {
	if s.Alternative == nil {
		return fmt.Sprintf("🤷 No healthier alternative known for *%s*.", escape(s.Item))
	}
	return fmt.Sprintf("🥗 Instead of *%s* try *%s*.", escape(s.Item), escape(*s.Alternative))
}

func formatHealth(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
