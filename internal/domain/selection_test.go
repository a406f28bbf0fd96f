package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func files(names ...string) []FileInfo {
	out := make([]FileInfo, len(names))
	for i, n := range names {
		out[i] = FileInfo{Name: n, Path: "/kb/" + n}
	}
	return out
}

func TestSelectionToggleParity(t *testing.T) {
	for toggles := 0; toggles < 6; toggles++ {
		s := NewSelection()
		s.Reconcile(files("a.pdf"))
		for i := 0; i < toggles; i++ {
			s.Toggle("a.pdf")
		}
		assert.Equal(t, toggles%2 == 1, s.Included("a.pdf"), "toggles=%d", toggles)
	}
}

func TestSelectionToggleParityFromPriorValue(t *testing.T) {
	s := NewSelection()
	s.Set("a.pdf", true)
	s.Reconcile(files("a.pdf", "b.pdf"))
	s.Toggle("a.pdf")
	s.Toggle("a.pdf")
	s.Toggle("a.pdf")
	assert.False(t, s.Included("a.pdf"))
}

func TestSelectionToggleUnseenAppendsIncluded(t *testing.T) {
	s := NewSelection()
	s.Reconcile(files("a.pdf"))
	s.Toggle("ghost.txt")
	assert.True(t, s.Has("ghost.txt"))
	assert.True(t, s.Included("ghost.txt"))
	assert.Equal(t, []string{"a.pdf", "ghost.txt"}, s.Names())
}

func TestSelectionReconcile(t *testing.T) {
	s := NewSelection()
	s.Reconcile(files("a.pdf", "b.pdf", "c.pdf"))
	s.Toggle("b.pdf")

	s.Reconcile(files("c.pdf", "b.pdf", "d.pdf"))

	assert.Equal(t, []string{"c.pdf", "b.pdf", "d.pdf"}, s.Names())
	assert.True(t, s.Included("b.pdf"))
	assert.False(t, s.Included("d.pdf"))
	assert.False(t, s.Has("a.pdf"))
}

func TestSelectionReconcileDuplicateNamesCollide(t *testing.T) {
	s := NewSelection()
	s.Reconcile(files("a.pdf", "a.pdf", "b.pdf"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, s.Names())
}

func TestSelectionReconcileIsIdempotent(t *testing.T) {
	s := NewSelection()
	list := files("a.pdf", "b.pdf")
	s.Reconcile(list)
	s.Toggle("a.pdf")
	s.Reconcile(list)
	first := s.Clone()
	s.Reconcile(list)
	assert.Equal(t, first, s)
	assert.True(t, s.Included("a.pdf"))
}

func TestSelectionActiveFilters(t *testing.T) {
	s := NewSelection()
	assert.NotNil(t, s.ActiveFilters())
	assert.Empty(t, s.ActiveFilters())

	s.Reconcile(files("a.pdf", "b.pdf", "c.pdf"))
	s.Toggle("a.pdf")
	s.Toggle("c.pdf")
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, s.ActiveFilters())
}

func TestSelectionDelete(t *testing.T) {
	s := NewSelection()
	s.Reconcile(files("a.pdf", "b.pdf", "c.pdf"))
	s.Toggle("b.pdf")
	s.Delete("b.pdf")
	s.Delete("missing")
	assert.False(t, s.Has("b.pdf"))
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, s.Names())
	assert.Empty(t, s.ActiveFilters())
}

func TestSelectionCloneIsIndependent(t *testing.T) {
	s := NewSelection()
	s.Reconcile(files("a.pdf"))
	c := s.Clone()
	c.Toggle("a.pdf")
	c.Toggle("new.pdf")
	assert.False(t, s.Included("a.pdf"))
	assert.False(t, s.Has("new.pdf"))
}
