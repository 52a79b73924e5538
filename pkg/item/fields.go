package item

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type fieldSetter func(it *Item, value string) error

var editable = map[Type]map[string]fieldSetter{
	TypeTheme: {
		"title":       setTitle,
		"description": setDescription,
		"archived":    setArchived,
	},
	TypeEpic: {
		"title":       setTitle,
		"description": setDescription,
		"archived":    setArchived,
		"theme":       func(it *Item, v string) error { it.ThemeTitle = v; return nil },
	},
	TypeStory: {
		"title":            setTitle,
		"description":      setDescription,
		"archived":         setArchived,
		"theme":            func(it *Item, v string) error { it.ThemeTitle = v; it.EpicTitle = ""; return nil },
		"epic":             func(it *Item, v string) error { it.EpicTitle = v; return nil },
		"customer":         func(it *Item, v string) error { it.Customer = v; return nil },
		"customer-site":    func(it *Item, v string) error { it.CustomerSite = v; return nil },
		"contributor":      func(it *Item, v string) error { it.Contributor = v; return nil },
		"contributor-site": func(it *Item, v string) error { it.ContributorSite = v; return nil },
		"added":            func(it *Item, v string) error { return setDate(&it.Added, v) },
		"deadline":         func(it *Item, v string) error { return setDate(&it.Deadline, v) },
		"attr1":            func(it *Item, v string) error { return setOption(&it.StoryAttr1, v) },
		"attr2":            func(it *Item, v string) error { return setOption(&it.StoryAttr2, v) },
		"attr3":            func(it *Item, v string) error { return setOption(&it.StoryAttr3, v) },
	},
	TypeTask: {
		"title":           setTitle,
		"owner":           func(it *Item, v string) error { it.Owner = v; return nil },
		"calculated-time": func(it *Item, v string) error { it.CalculatedTime = v; return nil },
		"attr1":           func(it *Item, v string) error { return setOption(&it.TaskAttr1, v) },
	},
}

// Fields lists the editable field names for a type, sorted.
func Fields(t Type) []string {
	names := make([]string, 0, len(editable[t]))
	for name := range editable[t] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetField assigns value to the named editable field of it. Setting the
// theme of a story clears its epic, as the epic belongs to the old theme.
func SetField(it *Item, field, value string) error {
	setters, ok := editable[it.Type]
	if !ok {
		return fmt.Errorf("item: %d has no editable fields (type %q)", it.ID, it.Type)
	}
	set, ok := setters[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return fmt.Errorf("item: %s has no field %q (one of %s)", it.Type, field, strings.Join(Fields(it.Type), ", "))
	}
	return set(it, value)
}

func setTitle(it *Item, v string) error {
	it.Title = v
	return nil
}

func setDescription(it *Item, v string) error {
	it.Description = v
	return nil
}

func setArchived(it *Item, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("item: archived: %w", err)
	}
	it.Archived = b
	return nil
}

func setDate(dst **Timestamp, v string) error {
	if strings.TrimSpace(v) == "" {
		*dst = nil
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("item: date %q: %w", v, err)
	}
	*dst = NewTimestamp(t)
	return nil
}

func setOption(dst **Option, v string) error {
	if strings.TrimSpace(v) == "" {
		*dst = nil
		return nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fmt.Errorf("item: option id %q: %w", v, err)
	}
	*dst = &Option{ID: id}
	return nil
}

// Assignment is one field=value pair given on the command line.
type Assignment struct {
	Field string
	Value string
}

// ParseAssignment reads "field=value". The value may be empty.
func ParseAssignment(raw string) (Assignment, error) {
	field, value, ok := strings.Cut(raw, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return Assignment{}, fmt.Errorf("item: %q: want field=value", raw)
	}
	return Assignment{Field: field, Value: value}, nil
}

// Apply sets every assignment on it, stopping at the first failure.
func Apply(it *Item, as []Assignment) error {
	for _, a := range as {
		if err := SetField(it, a.Field, a.Value); err != nil {
			return err
		}
	}
	return nil
}
