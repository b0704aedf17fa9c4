package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename keeps the base name only and replaces anything outside
// [A-Za-z0-9._-] with a dash.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return "file"
	}
	clean := strings.Trim(unsafeFileChars.ReplaceAllString(base, "-"), "-.")
	if clean == "" {
		return "file"
	}
	return clean
}

// StoredName builds a collision-free object name such as
// "material-3f2b...-boiler-manual.pdf".
func StoredName(prefix, original string) string {
	return prefix + "-" + uuid.NewString() + "-" + SanitizeFilename(original)
}
