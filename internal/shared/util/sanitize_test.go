package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFilenamePart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Engenheiro", want: "Engenheiro"},
		{name: "keeps spaces and accents", in: "  Ana Conceição  ", want: "Ana Conceição"},
		{name: "path separators", in: "../../etc/passwd", want: "etc-passwd"},
		{name: "windows separators", in: `C:\Users\ana`, want: "C-Users-ana"},
		{name: "reserved characters", in: `Dev <Go>: "senior"?*|`, want: "Dev -Go- -senior"},
		{name: "collapses dots", in: "a...b", want: "a.b"},
		{name: "control characters", in: "line\nbreak\ttab", want: "line-break-tab"},
		{name: "only unsafe", in: "///", want: "fallback"},
		{name: "empty", in: "   ", want: "fallback"},
		{name: "parentheses kept", in: "Analista (Pleno)", want: "Analista (Pleno)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeFilenamePart(tt.in, "fallback"); got != tt.want {
				t.Fatalf("SanitizeFilenamePart(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenamePartCapsLength(t *testing.T) {
	got := SanitizeFilenamePart(strings.Repeat("é", 200), "x")
	if n := utf8.RuneCountInString(got); n != maxFilenamePartRunes {
		t.Fatalf("expected %d runes, got %d", maxFilenamePartRunes, n)
	}
}

func TestDocumentFileName(t *testing.T) {
	if got := DocumentFileName("Engenheiro", "Ana Silva", ".docx"); got != "Engenheiro_Ana Silva.docx" {
		t.Fatalf("unexpected name: %s", got)
	}
	if got := DocumentFileName("", "../x", ".docx"); got != "vaga_x.docx" {
		t.Fatalf("unexpected name: %s", got)
	}
	if strings.ContainsAny(DocumentFileName("a/b", `c\d`, ".pdf"), `/\`) {
		t.Fatalf("separators must not survive")
	}
}

func TestSanitizeFileNameRejectsTraversal(t *testing.T) {
	if _, err := SanitizeFileName("../secret.pdf"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	got, err := SanitizeFileName(" a/b.pdf ")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "a_b.pdf" {
		t.Fatalf("unexpected name: %s", got)
	}
}
