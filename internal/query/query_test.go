package query

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	q := Parse(`dylan harper -ice ('/275','/99','/50')`)

	if want := []string{"dylan", "harper"}; !reflect.DeepEqual(q.Required, want) {
		t.Errorf("Required: got %v, want %v", q.Required, want)
	}
	if want := []string{"ice"}; !reflect.DeepEqual(q.Excluded, want) {
		t.Errorf("Excluded: got %v, want %v", q.Excluded, want)
	}
	if want := [][]string{{"/275", "/99", "/50"}}; !reflect.DeepEqual(q.Groups, want) {
		t.Errorf("Groups: got %v, want %v", q.Groups, want)
	}
}

func TestParseDoubleQuotedGroup(t *testing.T) {
	q := Parse(`wembanyama ("prizm","select")`)
	if want := [][]string{{"prizm", "select"}}; !reflect.DeepEqual(q.Groups, want) {
		t.Errorf("Groups: got %v, want %v", q.Groups, want)
	}
}

func TestParseIgnoresUnquotedParens(t *testing.T) {
	q := Parse(`luka (base) prizm`)
	if len(q.Groups) != 0 {
		t.Errorf("expected no groups, got %v", q.Groups)
	}
	if len(q.Required) != 3 {
		t.Errorf("expected 3 required terms, got %v", q.Required)
	}
}

func TestMatchesExclusion(t *testing.T) {
	tests := []struct {
		title string
		query string
		want  bool
	}{
		{"Dylan Harper D-2 Refractor /75", "dylan harper -ice", true},
		{"Dylan Harper Ice Refractor", "dylan harper -ice", false},
		{"Luka Doncic Prizm Silver", "luka doncic prizm", true},
		{"Luka Doncic Select", "luka doncic prizm", false},
	}

	for _, tt := range tests {
		q := Parse(tt.query)
		if got := q.Matches(tt.title); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v; want %v", tt.title, tt.query, got, tt.want)
		}
	}
}

func TestMatchesOrGroup(t *testing.T) {
	q := Parse(`Victor Wembanyama ('/275','/99','/50')`)

	if !q.Matches("Victor Wembanyama /50") {
		t.Error("title with /50 should satisfy the group")
	}
	if q.Matches("Victor Wembanyama /10") {
		t.Error("title with /10 should not satisfy the group")
	}
}

func TestMatchesMultipleGroupsAreConjunctive(t *testing.T) {
	q := Parse(`harper ('refractor','prizm') ('/50','/99')`)

	if !q.Matches("Dylan Harper Prizm /99") {
		t.Error("both groups satisfied, should match")
	}
	if q.Matches("Dylan Harper Prizm /10") {
		t.Error("second group unsatisfied, should not match")
	}
	if q.Matches("Dylan Harper Base /99") {
		t.Error("first group unsatisfied, should not match")
	}
}

func TestMatchesIsSubstringBased(t *testing.T) {
	// Substring semantics are deliberate: "ice" matches inside "Officer".
	q := Parse("ice")
	if !q.Matches("Officer Card") {
		t.Error("required term should match as substring")
	}
}

func TestMatchesEmptyQuery(t *testing.T) {
	q := Parse("")
	if !q.Matches("anything at all") {
		t.Error("empty query matches everything")
	}
}

func TestPlain(t *testing.T) {
	q := Parse(`dylan harper -ice ('/275','/99')`)
	if got, want := q.Plain(), "dylan harper"; got != want {
		t.Errorf("Plain() = %q; want %q", got, want)
	}
}
