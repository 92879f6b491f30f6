package dispatch

import "github.com/vigilo-hq/vigilo/internal/domain/audit"

// countByActor groups audit entries by their actor field
func countByActor(entries []*audit.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Actor]++
	}
	return counts
}

// countByFact groups audit entries by a string fact
func countByFact(entries []*audit.Entry, key string) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		if v, ok := e.Facts[key].(string); ok {
			counts[v]++
		}
	}
	return counts
}

// countWhereTrue counts audit entries carrying a true boolean fact
func countWhereTrue(entries []*audit.Entry, key string) int {
	n := 0
	for _, e := range entries {
		if v, ok := e.Facts[key].(bool); ok && v {
			n++
		}
	}
	return n
}
