package analyzer

import (
	"fmt"
	"strings"

	"github.com/newthinker/hedgeai/internal/core"
)

const promptTemplate = `You are a professional trading assistant.

Analyze the following trading chart image and identify if there is a clear trade setup. Use only price action, chart patterns, and technical analysis.

Return your analysis in this exact JSON format:
{
  "symbol": "%s",
  "interval": "%s",
  "trade_signal": "LONG or SHORT or NONE",
  "pattern": "Name of chart pattern or setup",
  "entry": Entry price or null,
  "stop_loss": Stop loss level or null,
  "take_profit": Take profit level or null,
  "confidence": "High/Medium/Low"
}

Do not add any commentary or explanation. Stick to the JSON.
`

// Prompt is the instruction sent alongside the chart image.
func Prompt(symbol core.Symbol, interval core.Timeframe) string {
	return fmt.Sprintf(promptTemplate, symbol, interval)
}

// CleanResponse strips a Markdown code fence, with or without a json tag,
// from a model reply.
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.Trim(text, "`")
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}
