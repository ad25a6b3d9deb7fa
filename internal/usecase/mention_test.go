package usecase

import (
	"reflect"
	"testing"

	"github.com/St1cky1/task-portal/internal/entity"
)

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "no mentions", text: "nothing to see here", want: []string{}},
		{name: "two mentions", text: "@alice hi @bob", want: []string{"alice", "bob"}},
		{name: "case preserved", text: "ping @Alice", want: []string{"Alice"}},
		{name: "duplicates collapsed", text: "@bob @bob and @alice @bob", want: []string{"bob", "alice"}},
		{name: "punctuation ends token", text: "Great job @bob!", want: []string{"bob"}},
		{name: "bare at sign", text: "email me @ home", want: []string{}},
		{name: "underscores and digits", text: "@jo_2 look", want: []string{"jo_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMentions(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractMentions(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolveMentionsToUserIDs(t *testing.T) {
	users := []entity.User{
		{ID: "1", Name: "Alice Smith"},
		{ID: "2", Name: "Bob Lee"},
		{ID: "3", Name: "Bobby Tables"},
		{ID: "4", Name: "Jo"},
		{ID: "5", Name: "Joanna"},
	}

	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{name: "single match", tokens: []string{"alice"}, want: []string{"1"}},
		{name: "case insensitive", tokens: []string{"ALICE"}, want: []string{"1"}},
		{name: "no match contributes nothing", tokens: []string{"zed"}, want: []string{}},
		{name: "ambiguous token over-matches", tokens: []string{"bob"}, want: []string{"2", "3"}},
		{name: "short name matches both", tokens: []string{"jo"}, want: []string{"4", "5"}},
		{name: "union is deduplicated", tokens: []string{"bob", "bobby"}, want: []string{"2", "3"}},
		{name: "no tokens", tokens: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveMentionsToUserIDs(tt.tokens, users)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveMentionsToUserIDs(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestResolveMentions_AuthorIsNotFiltered(t *testing.T) {
	users := []entity.User{{ID: "1", Name: "Alice"}}

	got := ResolveMentionsToUserIDs(ExtractMentions("note to self @alice"), users)
	if !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected the author to be resolved, got %v", got)
	}
}
