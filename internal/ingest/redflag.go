package ingest

import "strings"

// ContainsRedFlag returns true if any red flag term appears (case-insensitive)
// anywhere in the listing's role, company, stipend or description.
//
// Called before insert; flagged listings are discarded.
func ContainsRedFlag(l Listing, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(strings.Join([]string{l.Role, l.Company, l.Stipend, l.Description}, " "))
	for _, flag := range redFlags {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}
