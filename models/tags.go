// ABOUTME: Tag list codec shared by the gateway, mock store, and consumers
// ABOUTME: Converts between ordered tag lists and the comma-joined stored form
package models

import "strings"

// ParseTags splits a comma-joined tag string, trimming whitespace and
// dropping empty and repeated entries while keeping first-seen order.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags([]string{s})
}

// NormalizeTags splits elements on commas, trims every tag, and removes
// empties and duplicates. The result survives a JoinTags/ParseTags round trip.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, elem := range tags {
		for _, tag := range strings.Split(elem, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

// JoinTags renders a tag list in its stored form.
func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

// HasTag reports exact membership of tag in tags.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
