package schema

import "testing"

func TestRenameRule_Apply(t *testing.T) {
	tests := []struct {
		rule RenameRule
		in   string
		want string
	}{
		{RenameNone, "UserID", "UserID"},
		{RenameLower, "FooBar", "foobar"},
		{RenameUpper, "foo_bar", "FOO_BAR"},
		{RenamePascal, "user_name", "UserName"},
		{RenameCamel, "UserName", "userName"},
		{RenameCamel, "UserID", "userId"},
		{RenameCamel, "user_name", "userName"},
		{RenameSnake, "UserID", "user_id"},
		{RenameSnake, "HTTPServer", "http_server"},
		{RenameSnake, "very_tasty", "very_tasty"},
		{RenameScreamingSnake, "VeryTasty", "VERY_TASTY"},
		{RenameKebab, "VeryTasty", "very-tasty"},
		{RenameKebab, "very_tasty", "very-tasty"},
		{RenameScreamingKebab, "veryTasty", "VERY-TASTY"},
		{RenamePascal, "Z", "Z"},
		{RenameSnake, "Field2Name", "field2_name"},
	}
	for _, tt := range tests {
		if got := tt.rule.Apply(tt.in); got != tt.want {
			t.Errorf("%v.Apply(%q) = %q, want %q", tt.rule, tt.in, got, tt.want)
		}
	}
}

func TestParseRenameRule(t *testing.T) {
	for r := RenameLower; r <= RenameScreamingKebab; r++ {
		got, ok := ParseRenameRule(r.String())
		if !ok || got != r {
			t.Errorf("ParseRenameRule(%q) = %v, %v", r.String(), got, ok)
		}
	}
	if _, ok := ParseRenameRule("Title Case"); ok {
		t.Error("unknown rule should not parse")
	}
	if _, ok := ParseRenameRule("none"); ok {
		t.Error("none is not a user rule")
	}
}
