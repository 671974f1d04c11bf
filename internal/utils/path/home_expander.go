package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// DirectoryProvider resolves a per-user base directory such as os.UserCacheDir.
type DirectoryProvider func() (string, error)

// HomeExpander converts user home shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand trims the candidate and resolves a leading tilde to the user's home directory.
func (expander *HomeExpander) Expand(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if expander == nil || len(trimmedPath) == 0 {
		return trimmedPath
	}
	if !strings.HasPrefix(trimmedPath, tildeSymbolConstant) {
		return trimmedPath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return trimmedPath
	}

	if trimmedPath == tildeSymbolConstant {
		return resolvedHomeDirectory
	}

	for _, prefix := range []string{tildeForwardSlashPrefixConstant, tildeWithPathSeparatorPrefix} {
		if strings.HasPrefix(trimmedPath, prefix) {
			return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(trimmedPath, prefix))
		}
	}

	return trimmedPath
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}

// UserScopedPath joins the path elements under the directory returned by provider.
// An empty string is returned when the provider cannot resolve a directory.
func UserScopedPath(provider DirectoryProvider, elements ...string) string {
	if provider == nil {
		return ""
	}
	baseDirectory, providerError := provider()
	if providerError != nil || len(strings.TrimSpace(baseDirectory)) == 0 {
		return ""
	}
	return filepath.Join(append([]string{baseDirectory}, elements...)...)
}
