// Package item defines the backlog hierarchy (theme → epic → story → task)
// and the view-relative roles items play in a two-level snapshot.
package item

import (
	"fmt"
	"strings"
)

// Type is the semantic kind of an item, independent of the active view.
type Type string

const (
	// TypeTheme is the top-level grouping of epics.
	TypeTheme Type = "theme"
	// TypeEpic groups stories inside a theme.
	TypeEpic Type = "epic"
	// TypeStory is the unit of backlog work.
	TypeStory Type = "story"
	// TypeTask breaks a story down.
	TypeTask Type = "task"
)

// AllTypes returns the semantic types from the top of the hierarchy down.
func AllTypes() []Type {
	return []Type{
		TypeTheme,
		TypeEpic,
		TypeStory,
		TypeTask,
	}
}

// ParseType converts a string to a Type or returns an error for unknown values.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllTypes() {
		if candidate == t {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("item: unknown type %q", raw)
}

// Level is the depth of the type in the hierarchy, theme being 0. Unknown
// types report -1.
func (t Type) Level() int {
	for i, candidate := range AllTypes() {
		if candidate == t {
			return i
		}
	}
	return -1
}

// Above reports whether t is a strict ancestor level of other.
func (t Type) Above(other Type) bool {
	l, o := t.Level(), other.Level()
	return l >= 0 && o >= 0 && l < o
}

// Title returns the capitalised type name used by the clone endpoints.
func (t Type) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

func (t Type) String() string {
	return string(t)
}

// Role is the structural role an item plays in the active view.
type Role string

const (
	// RoleParent marks rows of the upper level of the view.
	RoleParent Role = "parent"
	// RoleChild marks rows nested under a parent.
	RoleChild Role = "child"
)

// ParseRole converts a string to a Role.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleParent, RoleChild:
		return r, nil
	}
	return "", fmt.Errorf("item: unknown role %q", raw)
}

func (r Role) String() string {
	return string(r)
}

// View is the two-level slice of the hierarchy shown during one page load.
type View string

const (
	ViewThemeEpic View = "theme-epic"
	ViewEpicStory View = "epic-story"
	ViewStoryTask View = "story-task"
)

// AllViews returns the supported views.
func AllViews() []View {
	return []View{
		ViewThemeEpic,
		ViewEpicStory,
		ViewStoryTask,
	}
}

// ParseView converts a string to a View or returns an error for unknown values.
func ParseView(raw string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllViews() {
		if candidate == v {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("item: unknown view %q", raw)
}

// ParentType returns the semantic type rendered as parent rows.
func (v View) ParentType() Type {
	switch v {
	case ViewThemeEpic:
		return TypeTheme
	case ViewEpicStory:
		return TypeEpic
	case ViewStoryTask:
		return TypeStory
	}
	return ""
}

// ChildType returns the semantic type rendered as child rows.
func (v View) ChildType() Type {
	switch v {
	case ViewThemeEpic:
		return TypeEpic
	case ViewEpicStory:
		return TypeStory
	case ViewStoryTask:
		return TypeTask
	}
	return ""
}

// RoleOf maps a semantic type to its structural role in v. The second result
// is false when the type is not a row of this view.
func (v View) RoleOf(t Type) (Role, bool) {
	switch {
	case t == "":
		return "", false
	case t == v.ParentType():
		return RoleParent, true
	case t == v.ChildType():
		return RoleChild, true
	}
	return "", false
}

// TypeOf maps a structural role back to the semantic type of v.
func (v View) TypeOf(r Role) Type {
	switch r {
	case RoleParent:
		return v.ParentType()
	case RoleChild:
		return v.ChildType()
	}
	return ""
}

func (v View) String() string {
	return string(v)
}
