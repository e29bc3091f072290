package view

import (
	"regexp"
	"strings"

	"github.com/alexanderramin/unload/internal/domain"
)

// Time-of-day slots used to order items inside a section.
const (
	SlotMorning = 0
	SlotMidday  = 1
	SlotEvening = 2
)

// The keyword lists are a heuristic, not a contract.
var (
	morningRe = regexp.MustCompile(`\bmorning\b|\bbreakfast\b|\bwake\b|\beach am\b|\b[6-9]am\b|\b[6-9]:\d\d`)
	middayRe  = regexp.MustCompile(`\blunch\b|\bnoon\b|\bmidday\b|\bafternoon\b|\b1[0-2]:\d\d|\b(?:12|1|2|3)pm\b`)
	eveningRe = regexp.MustCompile(`\bdinner\b|\bevening\b|\bnight\b|\bsupper\b|\b(?:[4-9]|10)pm\b`)
)

// TimeSlot guesses when in the day an item belongs from its text.
// Anything unrecognised is midday.
func TimeSlot(title, description string) int {
	text := strings.ToLower(title + " " + description)
	switch {
	case morningRe.MatchString(text):
		return SlotMorning
	case middayRe.MatchString(text):
		return SlotMidday
	case eveningRe.MatchString(text):
		return SlotEvening
	default:
		return SlotMidday
	}
}

func itemSlot(it *domain.Item) int {
	return TimeSlot(it.Title, domain.Deref(it.Description))
}
