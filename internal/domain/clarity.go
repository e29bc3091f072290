package domain

import "time"

const (
	// MaxFocusItems caps both the Focus view priority section and the
	// daily clarity focus list.
	MaxFocusItems = 3

	CalmMessage  = "Take a breath. You have nothing urgent today. Enjoy this moment of calm."
	ResetMessage = "Day cleared. Ready for a fresh start."

	dateLayout = "2006-01-02"
)

// ClaritySource records how a clarity record was produced.
type ClaritySource string

const (
	ClarityGenerated ClaritySource = "generated"
	ClarityCalm      ClaritySource = "calm"
	ClarityReset     ClaritySource = "reset"
)

// DailyClarity is the per-user, per-date morning plan.
type DailyClarity struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	ClarityDate        string          `json:"clarity_date"`
	MorningMessage     string          `json:"morning_message"`
	FocusItems         []string        `json:"focus_items"`
	ParkedSuggestions  []string        `json:"parked_suggestions"`
	DroppedSuggestions []string        `json:"dropped_suggestions"`
	EmotionalContext   *string         `json:"emotional_context"`
	Metadata           ClarityMetadata `json:"metadata"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
}

type ClarityMetadata struct {
	Source      ClaritySource `json:"source,omitempty"`
	ActiveCount int           `json:"active_count,omitempty"`
	Model       string        `json:"model,omitempty"`
}

// NeutralClarity builds a record with empty lists and a fixed message.
func NeutralClarity(userID, date, message string, source ClaritySource, now time.Time) *DailyClarity {
	return &DailyClarity{
		UserID:             userID,
		ClarityDate:        date,
		MorningMessage:     message,
		FocusItems:         []string{},
		ParkedSuggestions:  []string{},
		DroppedSuggestions: []string{},
		Metadata:           ClarityMetadata{Source: source},
		CreatedAt:          now,
	}
}

// ClarityDate is the calendar date of t in loc.
func ClarityDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// NoiseEntry is an emotional note logged alongside captures.
type NoiseEntry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Content       string    `json:"content"`
	EmotionalTags []string  `json:"emotional_tags"`
	CreatedAt     time.Time `json:"created_at"`
}
