package model

// ModelSet is a set of model names that remembers insertion order.
type ModelSet struct {
	order []string
	seen  map[string]struct{}
}

// NewModelSet returns a set holding names in the given order.
func NewModelSet(names ...string) *ModelSet {
	s := &ModelSet{seen: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name if it is not already present.
func (s *ModelSet) Add(name string) {
	if s.has(name) {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
}

// Merge adds every member of o, in o's order.
func (s *ModelSet) Merge(o *ModelSet) {
	if o == nil {
		return
	}
	for _, n := range o.order {
		s.Add(n)
	}
}

func (s *ModelSet) has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of members.
func (s *ModelSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Slice returns a copy of the members in insertion order.
func (s *ModelSet) Slice() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
