package domain

// CaptureMode selects which extraction schema a thought dump is processed with.
type CaptureMode string

const (
	ModeFocus     CaptureMode = "focus"
	ModeOrganizer CaptureMode = "organizer"
)

type Source string

const (
	SourceText  Source = "text"
	SourceVoice Source = "voice"
)

type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

type TranscriptionStatus string

const (
	TranscriptionPending   TranscriptionStatus = "pending"
	TranscriptionCompleted TranscriptionStatus = "completed"
	TranscriptionFailed    TranscriptionStatus = "failed"
)

type ItemType string

const (
	ItemTask       ItemType = "task"
	ItemCommitment ItemType = "commitment"
	ItemDeadline   ItemType = "deadline"
	ItemReminder   ItemType = "reminder"
)

type ItemStatus string

const (
	StatusActive  ItemStatus = "active"
	StatusDone    ItemStatus = "done"
	StatusParked  ItemStatus = "parked"
	StatusDropped ItemStatus = "dropped"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type EffortLevel string

const (
	EffortTiny   EffortLevel = "tiny"
	EffortSmall  EffortLevel = "small"
	EffortMedium EffortLevel = "medium"
	EffortLarge  EffortLevel = "large"
)

// TimeHint is the symbolic scheduling hint emitted by extraction.
type TimeHint string

const (
	HintToday    TimeHint = "today"
	HintTomorrow TimeHint = "tomorrow"
	HintUpcoming TimeHint = "upcoming"
	HintSomeday  TimeHint = "someday"
)

// Action names a user-triggered item transition.
type Action string

const (
	ActionDone  Action = "done"
	ActionPark  Action = "park"
	ActionDrop  Action = "drop"
	ActionFocus Action = "focus"
)

var validModes = map[CaptureMode]bool{ModeFocus: true, ModeOrganizer: true}

var validSources = map[Source]bool{SourceText: true, SourceVoice: true}

var validItemTypes = map[ItemType]bool{
	ItemTask: true, ItemCommitment: true, ItemDeadline: true, ItemReminder: true,
}

var validStatuses = map[ItemStatus]bool{
	StatusActive: true, StatusDone: true, StatusParked: true, StatusDropped: true,
}

var validPriorities = map[Priority]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityUrgent: true,
}

var validEfforts = map[EffortLevel]bool{
	EffortTiny: true, EffortSmall: true, EffortMedium: true, EffortLarge: true,
}

var validHints = map[TimeHint]bool{
	HintToday: true, HintTomorrow: true, HintUpcoming: true, HintSomeday: true,
}

var validActions = map[Action]bool{
	ActionDone: true, ActionPark: true, ActionDrop: true, ActionFocus: true,
}

func (m CaptureMode) Valid() bool { return validModes[m] }
func (s Source) Valid() bool      { return validSources[s] }
func (t ItemType) Valid() bool    { return validItemTypes[t] }
func (s ItemStatus) Valid() bool  { return validStatuses[s] }
func (p Priority) Valid() bool    { return validPriorities[p] }
func (e EffortLevel) Valid() bool { return validEfforts[e] }
func (h TimeHint) Valid() bool    { return validHints[h] }
func (a Action) Valid() bool      { return validActions[a] }

// IsPriority reports whether p belongs in the Focus view's priority section.
func (p Priority) IsPriority() bool {
	return p == PriorityHigh || p == PriorityUrgent
}
