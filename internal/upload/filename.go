package upload

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	allowedExt      = map[string]struct{}{"csv": {}}
	unsafeFilename  = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	defaultFilename = "upload.csv"
)

// Allowed reports whether name carries an allow-listed extension.
func Allowed(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExt[strings.ToLower(name[i+1:])]
	return ok
}

// SecureFilename reduces a client-supplied name to a flat ASCII file name.
// Accents are decomposed and dropped, path separators and whitespace become
// underscores, and leading dots or underscores are trimmed. An empty result
// becomes "upload.csv".
func SecureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	s := b.String()
	s = strings.NewReplacer("/", " ", "\\", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilename.ReplaceAllString(s, "")
	s = strings.Trim(s, "._")
	if s == "" {
		return defaultFilename
	}
	return s
}
