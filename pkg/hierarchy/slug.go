package hierarchy

import "strings"

// Slug converts a region name to the value of a location's region property:
// lowercased, every " and" removed, spaces replaced by hyphens.
//
//	Slug("Latin America and the Caribbean") // "latin-america-the-caribbean"
//	Slug("Sub-Saharan Africa")              // "sub-saharan-africa"
func Slug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " and", "")
	return strings.ReplaceAll(s, " ", "-")
}
