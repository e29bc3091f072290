package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// ShortID is the prefix shown in tables and accepted by item commands.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Truncate shortens s to n visible runes with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// RelativeDay names t's calendar day relative to now, both read in loc.
func RelativeDay(t, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	ty, tm, td := t.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	days := int(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Sub(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1 && days < 7:
		return t.In(loc).Weekday().String()
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days < 0:
		return fmt.Sprintf("%dd overdue", -days)
	default:
		return t.In(loc).Format("Jan 2")
	}
}

// Deadline renders a deadline with urgency coloring, or "someday".
func Deadline(t *time.Time, now time.Time, loc *time.Location) string {
	if t == nil {
		return Dim("someday")
	}
	if loc == nil {
		loc = time.UTC
	}
	label := RelativeDay(*t, now, loc)
	if h, m := t.In(loc).Hour(), t.In(loc).Minute(); !(h == 23 && m == 59) {
		label += t.In(loc).Format(" 15:04")
	}
	switch {
	case t.Before(now):
		return StyleRed.Render(label)
	case t.Sub(now) < 48*time.Hour:
		return StyleYellow.Render(label)
	default:
		return StyleFg.Render(label)
	}
}
