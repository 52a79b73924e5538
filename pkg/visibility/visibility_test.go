package visibility

import (
	"testing"

	"tableflip.dev/backlog/pkg/item"
)

func parents() []item.Item {
	return []item.Item{
		{ID: 1, Children: []item.Item{{ID: 10}, {ID: 11}}},
		{ID: 2, Children: []item.Item{{ID: 20}}},
		{ID: 3},
	}
}

func TestSeedFirstAndToggle(t *testing.T) {
	m := New()
	ps := parents()
	m.SeedFirst(ps)
	if !m.Visible(10) || !m.Visible(11) || m.Visible(20) {
		t.Fatalf("seed should expand only the first parent: %v", m.IDs())
	}
	if expanded := m.ToggleGroup(ps[0]); expanded {
		t.Fatalf("toggle of expanded group should collapse")
	}
	if m.Visible(10) || m.Visible(11) {
		t.Fatalf("children still visible after collapse")
	}
	if expanded := m.ToggleGroup(ps[1]); !expanded || !m.Visible(20) {
		t.Fatalf("toggle of collapsed group should expand")
	}
	if m.ToggleGroup(ps[2]) {
		t.Fatalf("childless parent cannot expand")
	}
}

func TestToggleFollowsFirstChild(t *testing.T) {
	m := New()
	ps := parents()
	m.Set(11, true)
	if expanded, icon := m.Expanded(ps[0]); expanded || !icon {
		t.Fatalf("icon follows first child: expanded=%v icon=%v", expanded, icon)
	}
	if !m.ToggleGroup(ps[0]) || !m.Visible(10) || !m.Visible(11) {
		t.Fatalf("group should become fully visible")
	}
	if _, icon := m.Expanded(ps[2]); icon {
		t.Fatalf("childless parent has no icon")
	}
}

func TestExpandCollapseAll(t *testing.T) {
	m := New()
	ps := parents()
	m.ExpandAll(ps)
	if m.Len() != 3 {
		t.Fatalf("expected 3 visible, got %d", m.Len())
	}
	m.CollapseAll(ps)
	if m.Len() != 0 {
		t.Fatalf("expected none visible, got %v", m.IDs())
	}
}

func TestNormalizeAndPrune(t *testing.T) {
	m := New()
	ps := parents()
	m.Set(11, true)
	m.Set(99, true)
	m.Normalize(ps)
	if !m.Visible(10) || !m.Visible(11) || m.Visible(20) {
		t.Fatalf("partial group not normalized: %v", m.IDs())
	}
	m.Prune(ps)
	if m.Visible(99) || m.Len() != 2 {
		t.Fatalf("prune kept unknown id: %v", m.IDs())
	}
}
