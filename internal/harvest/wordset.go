package harvest

// WordSet is the set of searched terms, remembering insertion order.
type WordSet struct {
	order []string
	seen  map[string]struct{}
}

// NewWordSet returns an empty set.
func NewWordSet() *WordSet {
	return &WordSet{seen: make(map[string]struct{})}
}

// Add inserts w and reports whether it was new.
func (s *WordSet) Add(w string) bool {
	if _, ok := s.seen[w]; ok {
		return false
	}
	s.seen[w] = struct{}{}
	s.order = append(s.order, w)
	return true
}

// Has reports whether w was added.
func (s *WordSet) Has(w string) bool {
	_, ok := s.seen[w]
	return ok
}

// Len is the number of distinct words.
func (s *WordSet) Len() int { return len(s.order) }

// Words returns a copy of the words in insertion order.
func (s *WordSet) Words() []string {
	return append([]string(nil), s.order...)
}
