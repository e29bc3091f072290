package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/unload/internal/domain"
)

// focusModeSystemPrompt asks for exactly two buckets for today.
const focusModeSystemPrompt = `You are the Focus Mode engine of a task capture app. The user is doing a brain dump for TODAY.
Extract actionable tasks and prioritize them into exactly two buckets:
1. top_3: the three most critical, high-impact tasks for today.
2. bench: everything else that could be done today but matters less.

Rules:
- Convert vague thoughts into actionable tasks that start with a verb.
- Ignore venting and emotional processing. Extract the task if there is one.
- Break huge tasks ("write book") down to the immediate next step.
- top_3 holds at most 3 entries. Urgent, high-value or blocking work goes there.
- Every entry needs a non-empty title.

Output ONLY a JSON object with this exact structure and no other keys:

{
  "top_3": [
    {
      "title": "Actionable title",
      "description": "Short context",
      "estimated_time": "15m",
      "type": "task"
    }
  ],
  "bench": [
    {
      "title": "Actionable title",
      "description": "Short context",
      "estimated_time": "30m",
      "type": "task"
    }
  ]
}

Optional entry fields: original_fragment (the user's words this came from), effort_level
("tiny"|"small"|"medium"|"large"), energy_level, tags (array of strings), subtasks (array of
strings), suggested_next_step, when ("today"|"tomorrow"|"upcoming"|"someday"), deadline_at
(ISO-8601 or null). type is one of "task", "commitment", "deadline", "reminder".`

// organizerModeSystemPrompt asks for a flat, scheduled list.
const organizerModeSystemPrompt = `You are the Organizer Mode engine of a task capture app.
The user is providing a mix of tasks, plans and future commitments.
Structure the input into a clean, organized to-do list.

Rules:
- Identify every distinct task or commitment.
- Detect dates and times: "Lunch tomorrow at 3pm" becomes when "tomorrow" and deadline_at as an ISO-8601 string.
- If there is no date, use when "today".
- Rewrite titles to be short and start with a verb. Every entry needs a non-empty title.

Output ONLY a JSON object with this exact structure and no other keys:

{
  "items": [
    {
      "title": "Lunch with boss",
      "description": "At High Street Cafe",
      "type": "task",
      "priority": "medium",
      "deadline_at": "ISO-8601 date string or null",
      "when": "today"
    }
  ]
}

type is one of "task", "commitment", "deadline", "reminder". priority is one of "low",
"medium", "high", "urgent". when is one of "today", "tomorrow", "upcoming", "someday".
Optional entry fields: original_fragment, effort_level ("tiny"|"small"|"medium"|"large"),
energy_level, tags (array of strings), subtasks (array of strings), suggested_next_step,
estimated_time.`

// recentContextTemplate is appended to the extraction prompt when the
// caller supplies already-stored items.
const recentContextTemplate = `

## Context
The user already has these items:
%s
Do not duplicate them. Only extract *new* items.`

// claritySystemPrompt selects up to three focus items and writes a short
// morning message.
const claritySystemPrompt = `You are the daily clarity engine of a task capture app. Help the user focus on what truly matters today.

Turn an overwhelming list of items into a calm, focused daily plan.

1. morning_message: a warm, human greeting of 2-3 sentences. Reference the emotional context if provided. Be encouraging but realistic.
2. focus_items: up to 3 item ids that matter most TODAY. Weigh deadlines and time sensitivity, balance high priority items with quick wins, mix effort levels and prefer items with clear next steps. Fewer than 3 is fine.
3. parked_suggestions: ids of items that can wait until later this week.
4. dropped_suggestions: ids of items that may no longer be worth doing.
5. emotional_context: a brief note on the detected emotional pattern, or null.

Use only ids from the list you are given.

Output ONLY a JSON object:

{
  "morning_message": "Warm greeting",
  "focus_items": ["item_id_1", "item_id_2", "item_id_3"],
  "parked_suggestions": ["item_id_x"],
  "dropped_suggestions": ["item_id_z"],
  "emotional_context": "Brief note"
}

Less is more. One or two well-chosen focus items beat three mediocre ones.`

// ExtractionPrompt returns the system prompt for mode, with the recent
// context appendix when recent is non-empty.
func ExtractionPrompt(mode domain.CaptureMode, recent []string) string {
	base := focusModeSystemPrompt
	if mode == domain.ModeOrganizer {
		base = organizerModeSystemPrompt
	}
	if len(recent) == 0 {
		return base
	}
	lines := make([]string, 0, len(recent))
	for _, r := range recent {
		if r = strings.TrimSpace(r); r != "" {
			lines = append(lines, "- "+r)
		}
	}
	if len(lines) == 0 {
		return base
	}
	return base + fmt.Sprintf(recentContextTemplate, strings.Join(lines, "\n"))
}
