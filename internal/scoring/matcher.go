package scoring

import (
	"sort"
	"strings"
)

// SplitSkills turns a comma-joined requirement string into its raw tokens.
// Tokens are not cleaned; MatchSkills does that.
func SplitSkills(required string) []string {
	if strings.TrimSpace(required) == "" {
		return nil
	}
	return strings.Split(required, ",")
}

// MatchSkills compares a candidate's skills with a job's required skills.
// Both sides are trimmed and lowercased. The score is the share of
// distinct required skills the candidate has. With nothing required the
// score is Neutral. Matched skills come back sorted.
func MatchSkills(userSkills, required []string) ([]string, Score) {
	req := toSet(required)
	if len(req) == 0 {
		return []string{}, Neutral
	}
	have := toSet(userSkills)

	matched := make([]string, 0, len(req))
	for s := range req {
		if _, ok := have[s]; ok {
			matched = append(matched, s)
		}
	}
	sort.Strings(matched)

	return matched, ratio(len(matched), len(req))
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}
