package metadata

import (
	"testing"

	"golang.org/x/exp/slices"
)

var discovered = []string{
	"src/classes/Foo.cls",
	"src/classes/Bar.cls",
	"src/triggers/AccountTrigger.trigger",
	"src/email/Sales/Welcome.email",
	"src/aura/MyCmp",
}

func TestFilterOnGlobs(t *testing.T) {
	tests := []struct {
		name  string
		globs []string
		want  []string
	}{
		{"star keeps everything", []string{"*"}, discovered},
		{"folder", []string{"classes/*"}, []string{"src/classes/Foo.cls", "src/classes/Bar.cls"}},
		{"src prefix in pattern", []string{"src/classes/Foo.cls"}, []string{"src/classes/Foo.cls"}},
		{"base name at any depth", []string{"*.email"}, []string{"src/email/Sales/Welcome.email"}},
		{"star doesn't cross folders", []string{"email/*"}, []string{}},
		{"double star does", []string{"email/**"}, []string{"src/email/Sales/Welcome.email"}},
		{"union keeps input order", []string{"*.trigger", "Foo*"}, []string{"src/classes/Foo.cls", "src/triggers/AccountTrigger.trigger"}},
		{"no match", []string{"pages/*"}, []string{}},
		{"no globs", nil, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterOnGlobs(discovered, tc.globs)
			if !slices.Equal(got, tc.want) {
				t.Errorf("FilterOnGlobs(%q) = %v, want %v", tc.globs, got, tc.want)
			}
		})
	}
}

func TestFilterOnGlobsEmptyPaths(t *testing.T) {
	if got := FilterOnGlobs(nil, []string{"*"}); len(got) != 0 {
		t.Errorf("FilterOnGlobs(nil) = %v", got)
	}
}
