package filenamify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenamify_CollapseEmpty(t *testing.T) {
	want := "a b"
	fileName := Filenamify("a  \t b")
	if fileName != want {
		t.Fatalf(`want %s, but got %s`, want, fileName)
	}
}

func TestFilenamify_SpecialCharacters(t *testing.T) {
	want := Untitled
	fileName := Filenamify(".<>|?")
	if fileName != want {
		t.Fatalf(`want %s, but got %s`, want, fileName)
	}
}

func TestFilenamify_Separators(t *testing.T) {
	want := "Docker - Networking"
	fileName := Filenamify("Docker : Networking")
	if fileName != want {
		t.Fatalf(`want %s, but got %s`, want, fileName)
	}
}

func TestFilenamify_ReservedName(t *testing.T) {
	want := "CON-"
	fileName := Filenamify("CON")
	if fileName != want {
		t.Fatalf(`want %s, but got %s`, want, fileName)
	}
}

func TestFilenamify_TooLongChinese(t *testing.T) {
	s := strings.Repeat("一二三四五六七八九十", 11)
	want := strings.Repeat("一二三四五六七八九十", 10)
	fileName := Filenamify(s)
	if fileName != want {
		t.Fatalf(`want %s, but got %s`, want, fileName)
	}
}

func TestFilenamify_TooLongEnglish(t *testing.T) {
	s := strings.Repeat("abcdefghijklmnopqrstuvwxyz", 4)
	want := s[:MaxFileNameLength]
	fileName := Filenamify(s)
	if fileName != want {
		t.Fatalf(`want %s, but got %s`, want, fileName)
	}
}

func TestFilenamify_Idempotent(t *testing.T) {
	inputs := []string{
		"Introduction to Kubernetes",
		"  ..hidden / path \\ name ",
		"a -- b",
		"lpt1",
		"What is <YAML>?",
		"trailing dots...",
		strings.Repeat("ab ", 60),
		strings.Repeat("x", 99) + " -y",
		"\u0085control\u0001",
		"",
	}
	for _, in := range inputs {
		once := Filenamify(in)
		assert.Equal(t, once, Filenamify(once), "input %q", in)
		assert.NotContains(t, once, "/")
		assert.NotEmpty(t, once)
	}
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "01", Ordinal(0, 5))
	assert.Equal(t, "10", Ordinal(9, 12))
	assert.Equal(t, "007", Ordinal(6, 120))
	assert.Equal(t, "02-Pods - ReplicaSets", WithOrdinal(1, 3, "Pods / ReplicaSets"))
}

func TestUniqueNames_Claim(t *testing.T) {
	u := NewUniqueNames()
	assert.Equal(t, "Quiz.md", u.Claim("Quiz", ".md"))
	assert.Equal(t, "Quiz (2).md", u.Claim("Quiz", ".md"))
	assert.Equal(t, "quiz (3).md", u.Claim("quiz", ".md"))
	assert.Equal(t, "Other.md", u.Claim("Other", ".md"))
}

func TestUniqueNames_DistinctTitlesSameNormalForm(t *testing.T) {
	u := NewUniqueNames()
	a := u.Claim(Filenamify("Pods: Intro"), ".md")
	b := u.Claim(Filenamify("Pods/ Intro"), ".md")
	assert.NotEqual(t, a, b)
}
