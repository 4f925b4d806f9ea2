package moderation

import (
	"strings"
	"testing"
)

func TestFilter_Check(t *testing.T) {
	f := NewFilter([]string{"Scam", "free robux", "  spoiler-bot "})

	cases := []struct {
		text    string
		want    string
		matched bool
	}{
		{"great episode!", "", false},
		{"this is a SCAM link", "scam", true},
		{"scam", "scam", true},
		{"scammer here", "", false},
		{"get FREE Robux now", "free robux", true},
		{"hi spoiler-bot.", "spoiler-bot", true},
		{"ñscam", "", false},
		{"(scam)", "scam", true},
	}
	for _, c := range cases {
		got, ok := f.Check(c.text)
		if ok != c.matched || got != c.want {
			t.Errorf("Check(%q) = %q,%v want %q,%v", c.text, got, ok, c.want, c.matched)
		}
	}
}

func TestFilter_CheckMultipleTexts(t *testing.T) {
	f := NewFilter([]string{"scam"})
	if _, ok := f.Check("clean title", "clean body", "scam tag"); !ok {
		t.Error("expected match in third text")
	}
}

func TestFilter_AddRemove(t *testing.T) {
	f := NewFilter(nil)
	if _, ok := f.Check("anything"); ok {
		t.Fatal("empty filter must not match")
	}
	f.Add("Bad")
	f.Add("bad")
	f.Add("awful")
	if words := f.Words(); len(words) != 2 || words[0] != "awful" || words[1] != "bad" {
		t.Fatalf("Words() = %v", words)
	}
	if _, ok := f.Check("that was bad"); !ok {
		t.Error("expected match after Add")
	}
	f.Remove("BAD")
	if _, ok := f.Check("that was bad"); ok {
		t.Error("expected no match after Remove")
	}
}

func TestFilter_Replace(t *testing.T) {
	f := NewFilter([]string{"one"})
	f.Replace([]string{"two", "two", ""})
	if words := f.Words(); len(words) != 1 || words[0] != "two" {
		t.Errorf("Words() = %v", words)
	}
}

func TestContainsWord_MultibyteBoundaries(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"日本scam", false},
		{"€scam", true},
		{"scam日本", false},
		{"«scam»", true},
		{"naïve scam", true},
	}
	for _, c := range cases {
		if got := containsWord(c.text, "scam"); got != c.want {
			t.Errorf("containsWord(%q) = %v want %v", c.text, got, c.want)
		}
	}
}

func TestContainsWord_LongTextManyNearMatches(t *testing.T) {
	text := strings.Repeat("ñscam ", 50000)
	if containsWord(text, "scam") {
		t.Fatal("embedded matches must not count")
	}
	// each near match looks at one rune back, never the whole prefix
	if allocs := testing.AllocsPerRun(3, func() { containsWord(text, "scam") }); allocs != 0 {
		t.Errorf("containsWord allocated %v times per run", allocs)
	}
	if !containsWord(text+"scam", "scam") {
		t.Error("trailing match missed")
	}
}
