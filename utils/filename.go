package utils

import (
	"path"
	"regexp"
	"strings"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9._-]+`)
	repeatedDashes  = regexp.MustCompile(`-{2,}`)
)

// SanitizeFileName turns a caller supplied file name hint into a safe,
// lowercase base name. Directory parts are dropped and anything outside
// [a-z0-9._-] becomes a dash. An empty result falls back to "image" + ext.
func SanitizeFileName(hint string) string {
	name := strings.ToLower(strings.TrimSpace(hint))
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		name = ""
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stem = unsafeNameChars.ReplaceAllString(stem, "-")
	stem = repeatedDashes.ReplaceAllString(stem, "-")
	stem = strings.Trim(stem, "-.")
	ext = unsafeNameChars.ReplaceAllString(ext, "")

	if stem == "" {
		stem = "image"
	}
	return stem + ext
}

// PublicURLPath maps a repository path under public/ to the path it is served at,
// e.g. public/images/a.png -> /images/a.png
func PublicURLPath(repoPath string) string {
	return "/" + strings.TrimPrefix(strings.TrimPrefix(repoPath, "public/"), "/")
}
