package transcribe

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store keeps voice recordings on disk under Dir/<user>/<unix-ms>-<name>.
type Store struct {
	Dir string
	Now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir, Now: time.Now}
}

// Save writes the recording and returns its reference relative to Dir.
func (s *Store) Save(userID string, audio Audio) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("voice directory not configured")
	}
	user := unsafeName.ReplaceAllString(userID, "_")
	name := unsafeName.ReplaceAllString(filepath.Base(CoalesceName(audio.Filename)), "_")
	ref := filepath.ToSlash(filepath.Join(user, strconv.FormatInt(s.Now().UnixMilli(), 10)+"-"+name))

	path := filepath.Join(s.Dir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("creating voice dir: %w", err)
	}
	if err := os.WriteFile(path, audio.Data, 0o640); err != nil {
		return "", fmt.Errorf("writing voice file: %w", err)
	}
	return ref, nil
}
