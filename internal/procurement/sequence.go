package procurement

import "fmt"

// nextNumber consumes the counter for prefix and returns e.g. "PR-0001".
// Counters only move forward, so numbers stay unique for the life of the store.
func nextNumber(s *Store, prefix string) string {
	if s.Counters == nil {
		s.Counters = make(map[string]int)
	}
	n := s.Counters[prefix]
	if n < 1 {
		n = 1
	}
	s.Counters[prefix] = n + 1
	return fmt.Sprintf("%s-%04d", prefix, n)
}
