package domain

import (
	"fmt"
	"time"
)

// ThoughtDump is one raw capture event. Only the status fields change after
// creation.
type ThoughtDump struct {
	ID                  string               `json:"id"`
	UserID              string               `json:"user_id"`
	Content             string               `json:"content"`
	Source              Source               `json:"source"`
	VoiceFileURL        *string              `json:"voice_file_url"`
	TranscriptionStatus *TranscriptionStatus `json:"transcription_status"`
	ProcessingStatus    ProcessingStatus     `json:"processing_status"`
	ErrorMessage        *string              `json:"error_message"`
	Metadata            DumpMetadata         `json:"metadata"`
	CreatedAt           time.Time            `json:"created_at"`
}

type DumpMetadata struct {
	Mode           CaptureMode `json:"mode,omitempty"`
	ExtractedCount int         `json:"extracted_count,omitempty"`
}

func (d *ThoughtDump) IsTerminal() bool {
	return d.ProcessingStatus == ProcessingCompleted || d.ProcessingStatus == ProcessingFailed
}

// Complete moves the dump to completed. Repeating it is a no-op; completing a
// failed dump is rejected.
func (d *ThoughtDump) Complete(extracted int) error {
	switch d.ProcessingStatus {
	case ProcessingCompleted:
		return nil
	case ProcessingFailed:
		return fmt.Errorf("%w: thought dump %s already failed", ErrInvalidTransition, d.ID)
	}
	d.ProcessingStatus = ProcessingCompleted
	d.ErrorMessage = nil
	d.Metadata.ExtractedCount = extracted
	return nil
}

// Fail moves the dump to failed and records why. A second Fail keeps the
// first message.
func (d *ThoughtDump) Fail(reason string) error {
	switch d.ProcessingStatus {
	case ProcessingFailed:
		return nil
	case ProcessingCompleted:
		return fmt.Errorf("%w: thought dump %s already completed", ErrInvalidTransition, d.ID)
	}
	d.ProcessingStatus = ProcessingFailed
	d.ErrorMessage = &reason
	return nil
}
