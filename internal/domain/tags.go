package domain

import "strings"

// NormalizeTags turns any raw tag list into the canonical representation:
// trimmed, blank entries dropped, duplicates removed keeping the first
// occurrence. A nil input yields an empty, non-nil slice, so untagged cards
// look the same whether they were stored with null or an empty list.
func NormalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// TagFilter selects cards by tag.
//
// With no tags and IncludeUntagged unset every card matches. Otherwise a card
// matches when it carries at least one of Tags, or when it carries no tags at
// all and IncludeUntagged is set.
type TagFilter struct {
	Tags            []string `json:"tags,omitempty"`
	IncludeUntagged bool     `json:"include_untagged,omitempty"`
}

// IsEmpty reports whether the filter lets every card through.
func (f TagFilter) IsEmpty() bool {
	return len(NormalizeTags(f.Tags)) == 0 && !f.IncludeUntagged
}

// Matches applies the filter to a raw tag list. Nil and empty lists are
// treated the same.
func (f TagFilter) Matches(cardTags []string) bool {
	if f.IsEmpty() {
		return true
	}

	cardTags = NormalizeTags(cardTags)
	if len(cardTags) == 0 {
		return f.IncludeUntagged
	}

	for _, want := range NormalizeTags(f.Tags) {
		for _, have := range cardTags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// TagCount is the number of cards in a language carrying Tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagSummary aggregates the tags used by the cards of one source language.
type TagSummary struct {
	Tags          []TagCount `json:"tags"`
	UntaggedCount int        `json:"untagged_count"`
}
