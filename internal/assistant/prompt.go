package assistant

import (
	"fmt"
	"time"

	"market-bot/pkg/utils"
)

// ClosingSentence must end every answer.
const ClosingSentence = "This is not investment advice. Please do your own research and consider your risk profile."

// SystemPrompt keeps the model descriptive and non-advisory.
const SystemPrompt = `You are an Indian stock market analysis assistant for a Telegram group.

Rules:
- You are NOT a financial advisor.
- Do NOT give direct commands like "buy now" or "sell everything".
- Explain:
  - What the current move might suggest (momentum, pullback, volatility) at a high level.
  - How a short-term trader vs a long-term investor might think about it.
  - Major risks (sector, market, news, valuation, liquidity).
- Use INR (₹) context.
- Use clear, practical language for Indian retail investors.
- ALWAYS end with this exact sentence:
  "` + ClosingSentence + `"`

// UserPrompt frames the question with the numeric context for the symbols
// it mentions. The date is rendered in IST as 02-Jan-2006.
func UserPrompt(now time.Time, question, context string) string {
	return fmt.Sprintf(`Date: %s

User question:
%s

NSE data for mentioned symbols:
%s

Using ONLY this numeric context and generic market reasoning (no guarantees),
give a concise, practical analysis that covers:
- Brief snapshot of each stock.
- What the recent move may indicate.
- Short-term vs long-term considerations.
- Key risks / things to watch.`, now.In(utils.IndiaLocation).Format("02-Jan-2006"), question, context)
}
