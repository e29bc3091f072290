package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/view"
)

const titleWidth = 48

// FormatItems renders a table of items.
func FormatItems(items []*domain.Item, now time.Time, loc *time.Location) string {
	if len(items) == 0 {
		return Dim("Nothing here. Your head is clear.") + "\n"
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			Dim(ShortID(it.ID)),
			Truncate(it.Title, titleWidth),
			PriorityBadge(it.EffectivePriority()),
			StatusBadge(it.Status),
			Deadline(it.DeadlineAt, now, loc),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "PRIORITY", "STATUS", "DUE"}, rows)
}

func itemLine(it *domain.Item, now time.Time, loc *time.Location) string {
	line := fmt.Sprintf("  %s  %s", Dim(ShortID(it.ID)), PriorityStyle(it.EffectivePriority()).Render(it.Title))
	if it.DeadlineAt != nil {
		line += "  " + Deadline(it.DeadlineAt, now, loc)
	}
	if it.SuggestedNextStep != nil && *it.SuggestedNextStep != "" {
		line += "\n      " + Dim("→ "+*it.SuggestedNextStep)
	}
	return line
}

func section(b *strings.Builder, title string, items []*domain.Item, empty string, now time.Time, loc *time.Location) {
	b.WriteString(Header(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString("  " + Dim(empty) + "\n")
	}
	for _, it := range items {
		b.WriteString(itemLine(it, now, loc))
		b.WriteString("\n")
	}
}

// FormatFocus renders the priority/bench split.
func FormatFocus(v view.FocusView, now time.Time, loc *time.Location) string {
	var b strings.Builder
	section(&b, fmt.Sprintf("Priority %d/%d", len(v.Priority), domain.MaxFocusItems), v.Priority, "No priorities. Promote something from the bench.", now, loc)
	b.WriteString("\n")
	section(&b, "Bench", v.Bench, "Bench is empty.", now, loc)
	return b.String()
}

// FormatOrganizer renders the today/upcoming split.
func FormatOrganizer(v view.OrganizerView, now time.Time, loc *time.Location) string {
	var b strings.Builder
	section(&b, "Today", v.Today, "Nothing due today.", now, loc)
	b.WriteString("\n")
	section(&b, "Upcoming", v.Upcoming, "Nothing upcoming.", now, loc)
	return b.String()
}

// FormatProcessResult summarizes one capture.
func FormatProcessResult(res *service.ProcessResult, now time.Time, loc *time.Location) string {
	var b strings.Builder
	switch res.ExtractedCount {
	case 0:
		b.WriteString(StyleYellow.Render("Nothing actionable found. Noted anyway."))
	case 1:
		b.WriteString(StyleGreen.Render("Captured 1 item."))
	default:
		b.WriteString(StyleGreen.Render(fmt.Sprintf("Captured %d items.", res.ExtractedCount)))
	}
	b.WriteString("\n")
	for i := range res.Items {
		b.WriteString(itemLine(&res.Items[i], now, loc))
		b.WriteString("\n")
	}
	return b.String()
}
