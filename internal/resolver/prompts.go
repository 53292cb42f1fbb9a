package resolver

import (
	"fmt"

	"github.com/hudumalabs/districtbot/internal/flow"
)

// noAnswerSentinel is what the model must emit when the curated document
// does not answer the question. Matched exactly after trimming whitespace;
// an answer that merely mentions the token is a real answer.
const noAnswerSentinel = "NO_ANSWER"

// notAvailableSentinel is the refusal line of the source-priority tiers.
const notAvailableSentinel = "Information not available in official sources."

func languageName(lang flow.Language) string {
	if lang == flow.English {
		return "English"
	}
	return "Kiswahili"
}

// docSystemPrompt instructs the model to answer strictly from the curated
// district document.
func docSystemPrompt(lang flow.Language, doc string) string {
	return fmt.Sprintf(`You are an assistant for a Tanzanian district council, answering citizen questions over WhatsApp.

Answer the question using ONLY the following official district information document. Do not use any outside knowledge.
If the document does not contain the answer, reply with exactly: %s

Reply in %s. Keep the answer short and practical for a WhatsApp message.

--- CONTENT START ---
%s
--- CONTENT END ---`, noAnswerSentinel, languageName(lang), doc)
}

// siteSystemPrompt embeds the crawled website text and orders strict source
// priority: the district's own material first, then other government sources.
func siteSystemPrompt(lang flow.Language, siteText string) string {
	return fmt.Sprintf(`You are an assistant for a Tanzanian district council, answering citizen questions over WhatsApp.

Answer the question from official sources only, in strict priority order:
1. The district website content below.
2. Other Tanzanian government sources you know of (.go.tz domains).
If no official source answers the question, reply with exactly: %s

Reply in %s. Keep the answer short and practical for a WhatsApp message.

--- CONTENT START ---
%s
--- CONTENT END ---`, notAvailableSentinel, languageName(lang), siteText)
}

// generalSystemPrompt is the last tier: no site text was available, so the
// model answers from its own knowledge under the same source-priority rule.
func generalSystemPrompt(lang flow.Language) string {
	return fmt.Sprintf(`You are an assistant for a Tanzanian district council, answering citizen questions over WhatsApp.

Answer the question from official Tanzanian government sources you know of (district councils, ministries, .go.tz domains) only.
If no official source answers the question, reply with exactly: %s

Reply in %s. Keep the answer short and practical for a WhatsApp message.`, notAvailableSentinel, languageName(lang))
}
