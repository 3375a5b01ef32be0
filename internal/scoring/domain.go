package scoring

import "strings"

// DomainAffinity counts how many of the candidate's domain labels occur
// anywhere in the requirement text, case-insensitively, as a share of all
// labels. No domains gives Neutral. Labels are used as given; profiles
// with blank labels fail validation before they are stored.
//
// Containment is plain substring matching, so "java" also hits
// "javascript".
func DomainAffinity(domains []string, requirements string) Score {
	if len(domains) == 0 {
		return Neutral
	}

	text := strings.ToLower(requirements)
	hits := 0
	for _, d := range domains {
		if strings.Contains(text, strings.ToLower(d)) {
			hits++
		}
	}
	return ratio(hits, len(domains))
}
