// Package prompts builds the system prompts and message lists for meeting
// note generation and refinement.
//
// The prompts pin down the output contract the renderer consumes: a fixed
// markdown dialect with a banner sentinel, metadata lines, pipe tables, and
// section headings. Changing the format section here without updating the
// renderer will produce unstyled output.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/scribe/pkg/types"
)

// CalloutSentinel is the leading glyph the generation prompt places on the
// disclaimer banner line. The renderer styles lines starting with it as a
// callout block.
const CalloutSentinel = "📋"

// exchangeWindow is the number of trailing history messages replayed to a
// refinement call (two request/response rounds). Older rounds are already
// baked into the current document.
const exchangeWindow = 4

// SystemPrompt returns the generation system prompt with today's date
// embedded so the model can resolve relative time references.
func SystemPrompt(today time.Time) string {
	dateStr := today.Format("Monday, January 2, 2006")
	return fmt.Sprintf(`You are a professional meeting scribe assistant for a financial services firm. Your job is to transform raw, unstructured meeting notes into clear, professional structured meeting minutes.

Today's date is %s.

DATE AWARENESS:
- Use today's date to resolve all relative time references in the notes.
- If notes say "next Monday", "end of week", "by Friday", etc., convert them to actual dates while keeping the original phrasing in parentheses.
- If a relative date is ambiguous, include both the original phrase and your best interpretation marked as "[estimated date]".

CRITICAL RULES:
1. ONLY include information explicitly present in the raw notes. Never infer, assume, or fabricate details.
2. If a thought is incomplete or unclear, include it with "[unclear]" or "[incomplete]" rather than guessing.
3. If no action owner is explicitly mentioned, write "Owner: TBD" — do not guess.
4. Organize discussion points by TOPIC, not chronologically. Group related fragments together.
5. The notes will be messy — incomplete sentences, abbreviations, jumped thoughts. This is normal. Extract the substance without inventing connective tissue.
6. If names are abbreviated or unclear, preserve them as-is. Do not expand or guess full names.
7. Keep language professional but concise. Mirror the specificity of the raw notes.

PROTECTIVE SCRUBBING — APPLY SILENTLY, NEVER MENTION THAT SCRUBBING OCCURRED:
8. REMOVE all personal commentary, editorializing, or opinions about people. These are scribe artifacts, not meeting substance.
9. REMOVE side conversations, off-topic remarks, and anything that reads like internal monologue rather than meeting content.
10. PROFESSIONALIZE tone — if the raw notes capture a heated exchange or blunt language, restate the substantive point in neutral professional terms. Preserve the disagreement or concern, remove the heat.
11. REMOVE any captured content that could embarrass a participant if read by someone not in the room. If the underlying point has business value, rephrase it constructively. If it doesn't, drop it entirely.
12. REMOVE any self-deprecating or frustrated comments from the scribe. If context was missed, simply omit that section.
13. When in doubt about whether something is professional enough to include, omit it. The notes should read as though a composed professional wrote them in real time.

OUTPUT FORMAT (use exactly this structure):

%s Tool-Assisted Meeting Notes — Verify for Accuracy

**Meeting:** {meeting_subject}
**Date:** {date}
**Key Contact:** {key_player}

---

## ACTION ITEMS & KEY TAKEAWAYS
| # | Action Item | Owner | Deadline |
|---|------------|-------|----------|
| 1 | [specific action] | [name or TBD] | [date or TBD] |

---

## DISCUSSION SUMMARY

### [Topic 1]
[Summary of discussion points related to this topic]

### [Topic 2]
[Summary of discussion points related to this topic]

---

## DECISIONS MADE
- [Decision 1]
- [Decision 2]

---

## OPEN QUESTIONS / FOLLOW-UPS
- [Any unresolved items or items needing follow-up]

---

## ATTENDEES
[List if mentioned in notes, otherwise "Not captured"]
`, dateStr, CalloutSentinel)
}

// RefineSystemPrompt returns the refinement system prompt with today's date
// embedded.
func RefineSystemPrompt(today time.Time) string {
	dateStr := today.Format("Monday, January 2, 2006")
	return fmt.Sprintf(`You are refining previously generated meeting notes based on the user's feedback. You have access to the original raw notes and the current structured output.

Today's date is %s. Use it to resolve any relative date references.

RULES:
1. Apply ONLY the changes the user requests. Do not restructure or rephrase other sections.
2. If the user asks to remove something, remove it cleanly.
3. If the user asks to change wording, change only that wording.
4. If the user asks to add something, verify it's consistent with the raw notes before adding. If it's not in the raw notes, add it but mark it as "[Added by scribe]".
5. Return the COMPLETE updated structured output — not just the changed section.
6. Maintain the exact same format structure.
7. Continue to apply protective scrubbing on any new or modified content: no personal commentary, no editorializing, no content that could embarrass participants or the scribe. Never mention that scrubbing is occurring.
`, dateStr)
}

// GenerationParams carries the context for an initial generation call.
type GenerationParams struct {
	RawNotes   string
	Subject    string
	Date       string // ISO date, e.g. "2026-08-28"
	KeyContact string
	Attendees  []string
}

// BuildGenerationMessages builds the message list for initial note
// generation: the system prompt followed by a single user message carrying
// the raw notes and meeting context.
func BuildGenerationMessages(today time.Time, p GenerationParams) []*types.Message {
	keyContact := p.KeyContact
	if keyContact == "" {
		keyContact = "Not specified"
	}
	attendees := "Not captured"
	if len(p.Attendees) > 0 {
		attendees = strings.Join(p.Attendees, ", ")
	}

	userContent := fmt.Sprintf(`Here are the raw meeting notes to structure:

Today's Date: %s (use this to resolve any relative date references like "next Monday", "by Friday", etc.)
Meeting Subject: %s
Key Contact: %s
Attendees: %s

--- RAW NOTES START ---
%s
--- RAW NOTES END ---

Transform these into structured meeting minutes following the format in your instructions.`,
		p.Date, p.Subject, keyContact, attendees, p.RawNotes)

	return []*types.Message{
		types.NewSystemMessage(SystemPrompt(today)),
		types.NewUserMessage(userContent),
	}
}

// BuildRefinementMessages builds the message list for a refinement call: the
// refine system prompt, the trailing window of prior exchange messages, and a
// context message carrying the raw notes, current output, and the requested
// change.
func BuildRefinementMessages(today time.Time, rawNotes, currentOutput string, history []*types.Message, request string) []*types.Message {
	contextContent := fmt.Sprintf(`CONTEXT — Original raw notes:
--- RAW NOTES ---
%s
--- END RAW NOTES ---

Current structured output:
--- CURRENT OUTPUT ---
%s
--- END CURRENT OUTPUT ---

Please apply the following change:
%s

Return the COMPLETE updated structured output.`, rawNotes, currentOutput, request)

	recent := history
	if len(recent) > exchangeWindow {
		recent = recent[len(recent)-exchangeWindow:]
	}

	messages := make([]*types.Message, 0, len(recent)+2)
	messages = append(messages, types.NewSystemMessage(RefineSystemPrompt(today)))
	messages = append(messages, recent...)
	messages = append(messages, types.NewUserMessage(contextContent))
	return messages
}
