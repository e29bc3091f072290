package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/service"
)

// FormatClarity renders today's morning message and focus list.
func FormatClarity(v *service.ClarityView, now time.Time, loc *time.Location) string {
	if v == nil || v.NeedsGeneration || v.Clarity == nil {
		return Dim("No clarity for today yet. Run 'unload clarity generate'.") + "\n"
	}
	c := v.Clarity

	var body strings.Builder
	body.WriteString(StyleFg.Render(c.MorningMessage))
	if c.EmotionalContext != nil && *c.EmotionalContext != "" {
		body.WriteString("\n\n" + Dim(*c.EmotionalContext))
	}
	if len(v.FocusItemDetails) > 0 {
		body.WriteString("\n\n" + Bold("Focus"))
		for _, it := range v.FocusItemDetails {
			body.WriteString("\n" + itemLine(it, now, loc))
		}
	}
	if n := len(c.ParkedSuggestions); n > 0 {
		body.WriteString("\n\n" + Dim(fmt.Sprintf("Could wait: %s", shortIDs(c.ParkedSuggestions))))
	}
	if n := len(c.DroppedSuggestions); n > 0 {
		body.WriteString("\n" + Dim(fmt.Sprintf("Could let go: %s", shortIDs(c.DroppedSuggestions))))
	}

	return RenderBox("Clarity · "+c.ClarityDate, body.String()) + "\n"
}

func shortIDs(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = ShortID(id)
	}
	return strings.Join(out, ", ")
}
