package types

import "strings"

// RoleCategory selects which flavor of prep material gets generated
type RoleCategory string

const (
	RoleCategoryTech    RoleCategory = "tech"
	RoleCategoryContent RoleCategory = "content"
)

// content-side keywords; anything else falls through to tech
var contentRoleKeywords = []string{"writer", "content", "editor"}

// ClassifyRole buckets a free-form job role string. Matching is a
// case-insensitive substring check, so "Senior Content Strategist" and
// "UX WRITER" both classify as content. An empty or unrecognized role
// defaults to tech.
func ClassifyRole(jobRole string) RoleCategory {
	lower := strings.ToLower(jobRole)
	for _, kw := range contentRoleKeywords {
		if strings.Contains(lower, kw) {
			return RoleCategoryContent
		}
	}
	return RoleCategoryTech
}
