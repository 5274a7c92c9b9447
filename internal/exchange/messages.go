package exchange

import (
	"fmt"
	"strings"
)

// openMessage renders the Markdown notification for a freshly accepted
// position, with the running stats block appended.
func openMessage(p *Position, stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏳ *Position Opened* #Position%d\n", p.ID)
	fmt.Fprintf(&b, "Type: *%s*\n", p.Direction)
	fmt.Fprintf(&b, "Strategy: *%s*\n", p.Strategy)
	fmt.Fprintf(&b, "Symbol: *%s*\n", p.Symbol)
	fmt.Fprintf(&b, "Timeframe: *%s*\n", p.Interval)
	fmt.Fprintf(&b, "Entry: `%.4f`\n", p.Entry)
	fmt.Fprintf(&b, "Stop Loss: `%.4f`\n", p.StopLoss)
	fmt.Fprintf(&b, "Take Profit: `%.4f`\n", p.TakeProfit)
	b.WriteString(statsBlock(stats))
	return b.String()
}

// closeMessage renders the Markdown notification for a closed position.
func closeMessage(p *Position, stats Stats) string {
	profit := p.ProfitInR()
	emoji := "😐"
	if profit > 0 {
		emoji = "✅"
	} else if profit < 0 {
		emoji = "⛔"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *Position Closed* #Position%d — %s\n", emoji, p.ID, p.ExitReason)
	fmt.Fprintf(&b, "Type: *%s*\n", p.Direction)
	fmt.Fprintf(&b, "Strategy: *%s*\n", p.Strategy)
	fmt.Fprintf(&b, "Symbol: *%s*\n", p.Symbol)
	fmt.Fprintf(&b, "Timeframe: *%s*\n", p.Interval)
	fmt.Fprintf(&b, "Entry → Exit: `%.4f` → `%.4f`\n", p.Entry, p.ExitPrice)
	fmt.Fprintf(&b, "Profit: *%.2f*\n", profit)
	fmt.Fprintf(&b, "Duration: `%s`\n", p.Duration())
	b.WriteString(statsBlock(stats))
	return b.String()
}

func statsBlock(stats Stats) string {
	var b strings.Builder
	b.WriteString("\n\n📊 *Stats*\n")
	fmt.Fprintf(&b, "Closed: `%d`\n", stats.Closed)
	fmt.Fprintf(&b, "Open: `%d`\n", stats.Open)
	fmt.Fprintf(&b, "TP Hits: `%.2f`\n", stats.TPHits)
	fmt.Fprintf(&b, "EN Hits: `%d`\n", stats.BreakevenHits)
	fmt.Fprintf(&b, "SL Hits: `%d`\n", stats.SLHits)
	fmt.Fprintf(&b, "Total Profit: `%.2f`\n", stats.ProfitSum)
	return b.String()
}
