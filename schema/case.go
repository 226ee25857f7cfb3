package schema

import (
	"strings"
	"unicode"
)

// RenameRule is a case convention applied to field and variant names.
type RenameRule uint8

const (
	RenameNone RenameRule = iota
	RenameLower
	RenameUpper
	RenamePascal
	RenameCamel
	RenameSnake
	RenameScreamingSnake
	RenameKebab
	RenameScreamingKebab
)

var ruleNames = [...]string{
	RenameNone:           "none",
	RenameLower:          "lowercase",
	RenameUpper:          "UPPERCASE",
	RenamePascal:         "PascalCase",
	RenameCamel:          "camelCase",
	RenameSnake:          "snake_case",
	RenameScreamingSnake: "SCREAMING_SNAKE_CASE",
	RenameKebab:          "kebab-case",
	RenameScreamingKebab: "SCREAMING-KEBAB-CASE",
}

func (r RenameRule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "unknown"
}

// ParseRenameRule looks up a rule by its canonical spelling.
func ParseRenameRule(s string) (RenameRule, bool) {
	for i, name := range ruleNames[1:] {
		if name == s {
			return RenameRule(i + 1), true
		}
	}
	return RenameNone, false
}

// Apply converts an identifier. Words are split at underscores, hyphens and
// case changes, so Go style (UserID), snake_case and kebab-case inputs all
// convert the same way.
func (r RenameRule) Apply(name string) string {
	switch r {
	case RenameNone:
		return name
	case RenameLower:
		return strings.ToLower(name)
	case RenameUpper:
		return strings.ToUpper(name)
	}

	words := splitWords(name)
	switch r {
	case RenamePascal, RenameCamel:
		var b strings.Builder
		for i, w := range words {
			if i == 0 && r == RenameCamel {
				b.WriteString(strings.ToLower(w))
				continue
			}
			b.WriteString(capitalize(w))
		}
		return b.String()
	case RenameSnake, RenameKebab:
		return strings.ToLower(strings.Join(words, separator(r)))
	case RenameScreamingSnake, RenameScreamingKebab:
		return strings.ToUpper(strings.Join(words, separator(r)))
	}
	return name
}

func separator(r RenameRule) string {
	if r == RenameKebab || r == RenameScreamingKebab {
		return "-"
	}
	return "_"
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	rs := []rune(strings.ToLower(w))
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}

// splitWords splits "HTTPServerID2" into [HTTP Server ID2] and "user_name"
// into [user name].
func splitWords(s string) []string {
	var words []string
	rs := []rune(s)
	start := 0
	flush := func(end int) {
		if end > start {
			words = append(words, string(rs[start:end]))
		}
	}
	for i, r := range rs {
		if r == '_' || r == '-' {
			flush(i)
			start = i + 1
			continue
		}
		if i == start || !unicode.IsUpper(r) {
			continue
		}
		prev := rs[i-1]
		nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
		if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return words
}
