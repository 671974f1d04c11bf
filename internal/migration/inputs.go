package migration

import (
	"strings"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
)

const folderNameDelimitersConstant = ",，;；\n\r"

// ParseFolderNames splits free-form input on commas, semicolons (ASCII and
// full-width) and line breaks, dropping blank entries.
func ParseFolderNames(rawInput string) []string {
	fields := strings.FieldsFunc(rawInput, func(character rune) bool {
		return strings.ContainsRune(folderNameDelimitersConstant, character)
	})
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		trimmedField := strings.TrimSpace(field)
		if len(trimmedField) == 0 {
			continue
		}
		names = append(names, trimmedField)
	}
	return names
}

// NormalizeFolderNames parses every entry and removes names that differ only in
// case or surrounding whitespace, keeping the first spelling.
func NormalizeFolderNames(entries []string) []string {
	seenKeys := make(map[string]struct{})
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		for _, name := range ParseFolderNames(entry) {
			key := folderNameKey(name)
			if _, seen := seenKeys[key]; seen {
				continue
			}
			seenKeys[key] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// NormalizeBaseName trims the base name and caps it at maxLength characters,
// falling back when nothing remains.
func NormalizeBaseName(rawBaseName string, maxLength int, fallbackBaseName string) string {
	trimmedBaseName := strings.TrimSpace(rawBaseName)
	if len(trimmedBaseName) == 0 {
		trimmedBaseName = fallbackBaseName
	}
	runes := []rune(trimmedBaseName)
	if maxLength > 0 && len(runes) > maxLength {
		trimmedBaseName = strings.TrimSpace(string(runes[:maxLength]))
	}
	if len(trimmedBaseName) == 0 {
		return fallbackBaseName
	}
	return trimmedBaseName
}

// SelectFolders returns every owned folder whose title matches one of the names
// ignoring case and surrounding whitespace, plus the names that matched nothing.
func SelectFolders(ownedFolders []favorites.SourceCollection, names []string) ([]favorites.SourceCollection, []string) {
	wantedKeys := make(map[string]struct{}, len(names))
	for _, name := range names {
		wantedKeys[folderNameKey(name)] = struct{}{}
	}

	foundKeys := make(map[string]struct{})
	selected := make([]favorites.SourceCollection, 0)
	for _, folder := range ownedFolders {
		key := folderNameKey(folder.Title)
		if _, wanted := wantedKeys[key]; !wanted {
			continue
		}
		foundKeys[key] = struct{}{}
		selected = append(selected, folder)
	}

	missing := make([]string, 0)
	for _, name := range names {
		if _, found := foundKeys[folderNameKey(name)]; !found {
			missing = append(missing, name)
		}
	}
	return selected, missing
}

func folderNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
