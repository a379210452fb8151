package lint

import "strings"

// DocsBaseURL is where the rule reference generated by scripts/gendocs is
// served. Rule links point at a section of one group page.
var DocsBaseURL = "https://sqlgrain.dev/rules"

// BuildDocURL links to the reference section of the rule with code.
func BuildDocURL(code string) string {
	group := "other"
	if r, ok := GetByCode(code); ok {
		group = PrimaryGroup(r)
	}
	return strings.TrimSuffix(DocsBaseURL, "/") + "/" + group + "#" + strings.ToLower(code)
}

// PrimaryGroup is the group a rule is documented under: the first one
// other than "all" and "core".
func PrimaryGroup(r Rule) string {
	for _, g := range r.Groups() {
		if g != "all" && g != "core" {
			return g
		}
	}
	return "other"
}
