package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFilenamePartRunes = 80

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// SanitizeFilenamePart turns free text into a single safe path component.
// Letters, digits, space and -_.() are kept, everything else becomes '-'.
// An empty result yields fallback.
func SanitizeFilenamePart(raw, fallback string) string {
	var b strings.Builder
	lastDash := false
	lastDot := false
	count := 0
	for _, r := range strings.TrimSpace(raw) {
		if count >= maxFilenamePartRunes {
			break
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '(' || r == ')':
			b.WriteRune(r)
			lastDash, lastDot = false, false
		case r == '.':
			if lastDot {
				continue
			}
			b.WriteRune(r)
			lastDash, lastDot = false, true
		default:
			if lastDash {
				continue
			}
			b.WriteRune('-')
			lastDash, lastDot = true, false
		}
		count++
	}
	out := strings.Trim(b.String(), " .-")
	if out == "" {
		return fallback
	}
	return out
}

// DocumentFileName builds "<jobTitle>_<candidateName><ext>" from sanitized parts.
func DocumentFileName(jobTitle, candidateName, ext string) string {
	return SanitizeFilenamePart(jobTitle, "vaga") + "_" + SanitizeFilenamePart(candidateName, "candidato") + ext
}
