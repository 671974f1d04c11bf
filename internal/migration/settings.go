package migration

import (
	"time"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/planner"
)

const (
	// DefaultMaxFolderSize is the largest number of items a folder may hold.
	DefaultMaxFolderSize = 1000
	// DefaultMaxBaseNameLength caps the user supplied base name, in characters.
	DefaultMaxBaseNameLength = 10
	// DefaultMoveDelay follows every move to stay under the remote rate limit.
	DefaultMoveDelay = 350 * time.Millisecond
	// DefaultFolderIntro is the description given to created folders.
	DefaultFolderIntro = "按UP主视频数量自动聚合"
)

// Settings holds the immutable limits and defaults of a run.
type Settings struct {
	MaxFolderSize       int
	MaxFolderNameLength int
	MaxBaseNameLength   int
	DefaultBaseName     string
	MoveDelay           time.Duration
	FolderIntro         string
	PrivateFolders      bool
}

// DefaultSettings returns the standard limits.
func DefaultSettings() Settings {
	return Settings{
		MaxFolderSize:       DefaultMaxFolderSize,
		MaxFolderNameLength: planner.DefaultMaxNameLength,
		MaxBaseNameLength:   DefaultMaxBaseNameLength,
		DefaultBaseName:     planner.DefaultBaseName,
		MoveDelay:           DefaultMoveDelay,
		FolderIntro:         DefaultFolderIntro,
	}
}

// Sanitize replaces unset values with defaults.
func (settings Settings) Sanitize() Settings {
	defaults := DefaultSettings()
	sanitized := settings
	if sanitized.MaxFolderSize <= 0 {
		sanitized.MaxFolderSize = defaults.MaxFolderSize
	}
	if sanitized.MaxFolderNameLength <= 0 {
		sanitized.MaxFolderNameLength = defaults.MaxFolderNameLength
	}
	if sanitized.MaxBaseNameLength <= 0 {
		sanitized.MaxBaseNameLength = defaults.MaxBaseNameLength
	}
	if len(sanitized.DefaultBaseName) == 0 {
		sanitized.DefaultBaseName = defaults.DefaultBaseName
	}
	if sanitized.MoveDelay < 0 {
		sanitized.MoveDelay = 0
	}
	return sanitized
}
