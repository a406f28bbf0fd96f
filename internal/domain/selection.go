package domain

// Selection maps file names to whether they are included in the query filter.
// Iteration order is insertion order, so ActiveFilters is deterministic.
// A Selection is not safe for concurrent use; owners guard it.
type Selection struct {
	order    []string
	included map[string]bool
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{included: map[string]bool{}}
}

// Toggle flips the flag for name. An unseen name is appended as included.
func (s *Selection) Toggle(name string) {
	s.Set(name, !s.included[name])
}

// Set assigns the flag for name, appending it when unseen.
func (s *Selection) Set(name string, included bool) {
	if _, ok := s.included[name]; !ok {
		s.order = append(s.order, name)
	}
	s.included[name] = included
}

// Included reports whether name is part of the filter.
func (s *Selection) Included(name string) bool {
	return s.included[name]
}

// Has reports whether name has an entry at all.
func (s *Selection) Has(name string) bool {
	_, ok := s.included[name]
	return ok
}

// Delete drops the entry for name.
func (s *Selection) Delete(name string) {
	if _, ok := s.included[name]; !ok {
		return
	}
	delete(s.included, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Reconcile rebuilds the selection against an authoritative file list.
// Known names keep their flag, new names default to false and names
// missing from files are dropped. Order follows files.
func (s *Selection) Reconcile(files []FileInfo) {
	order := make([]string, 0, len(files))
	included := make(map[string]bool, len(files))
	for _, f := range files {
		if _, dup := included[f.Name]; dup {
			continue
		}
		order = append(order, f.Name)
		included[f.Name] = s.included[f.Name]
	}
	s.order = order
	s.included = included
}

// ActiveFilters returns the included names in selection order. Never nil.
func (s *Selection) ActiveFilters() []string {
	out := make([]string, 0, len(s.order))
	for _, n := range s.order {
		if s.included[n] {
			out = append(out, n)
		}
	}
	return out
}

// Names returns every name with an entry, in order.
func (s *Selection) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of entries.
func (s *Selection) Len() int { return len(s.order) }

// Clone returns an independent copy.
func (s *Selection) Clone() *Selection {
	c := &Selection{
		order:    append([]string(nil), s.order...),
		included: make(map[string]bool, len(s.included)),
	}
	for k, v := range s.included {
		c.included[k] = v
	}
	return c
}
