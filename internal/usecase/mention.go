package usecase

import (
	"regexp"
	"strings"

	"github.com/St1cky1/task-portal/internal/entity"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the distinct @name tokens in text, without the @,
// in first-seen order. Case is preserved from the source text.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		token := m[1]
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// ResolveMentionsToUserIDs matches every token against every user's display
// name (case-insensitive substring). A token may resolve to several users;
// all of them are returned. The author is not filtered here.
func ResolveMentionsToUserIDs(tokens []string, users []entity.User) []string {
	ids := []string{}
	seen := make(map[string]struct{})

	for _, token := range tokens {
		needle := strings.ToLower(token)
		if needle == "" {
			continue
		}
		for _, u := range users {
			if !strings.Contains(strings.ToLower(u.Name), needle) {
				continue
			}
			if _, ok := seen[u.ID]; ok {
				continue
			}
			seen[u.ID] = struct{}{}
			ids = append(ids, u.ID)
		}
	}
	return ids
}
