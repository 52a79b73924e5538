package item

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Item is one node of the hierarchy as returned in a snapshot. The Type tag
// is stamped by the fetcher from the view's role table, so callers switch on
// it instead of guessing from field presence.
//
// Items are value snapshots: a new fetch replaces them wholesale and nothing
// mutates one in place except an edit session draft, which is a copy.
type Item struct {
	ID       int64  `json:"id"`
	Type     Type   `json:"-"`
	ParentID *int64 `json:"parentId,omitempty"`
	ThemeID  *int64 `json:"themeId,omitempty"`
	EpicID   *int64 `json:"epicId,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
	Prio        int    `json:"prio,omitempty"`

	ThemeTitle string `json:"themeTitle,omitempty"`
	EpicTitle  string `json:"epicTitle,omitempty"`

	// story fields
	Customer        string     `json:"customer,omitempty"`
	CustomerSite    string     `json:"customerSite,omitempty"`
	Contributor     string     `json:"contributor,omitempty"`
	ContributorSite string     `json:"contributorSite,omitempty"`
	Added           *Timestamp `json:"added,omitempty"`
	Deadline        *Timestamp `json:"deadline,omitempty"`
	StoryAttr1      *Option    `json:"storyAttr1,omitempty"`
	StoryAttr2      *Option    `json:"storyAttr2,omitempty"`
	StoryAttr3      *Option    `json:"storyAttr3,omitempty"`

	// task fields
	Owner          string  `json:"owner,omitempty"`
	CalculatedTime string  `json:"calculatedTime,omitempty"`
	TaskAttr1      *Option `json:"taskAttr1,omitempty"`

	Children []Item `json:"children,omitempty"`
}

// Ref returns the selection reference for the item under role r.
func (i Item) Ref(r Role) Ref {
	return Ref{ID: i.ID, Role: r}
}

// Clone returns a deep copy safe to modify.
func (i Item) Clone() Item {
	out := i
	out.ParentID = cloneID(i.ParentID)
	out.ThemeID = cloneID(i.ThemeID)
	out.EpicID = cloneID(i.EpicID)
	if i.Added != nil {
		added := *i.Added
		out.Added = &added
	}
	if i.Deadline != nil {
		deadline := *i.Deadline
		out.Deadline = &deadline
	}
	out.StoryAttr1 = cloneOption(i.StoryAttr1)
	out.StoryAttr2 = cloneOption(i.StoryAttr2)
	out.StoryAttr3 = cloneOption(i.StoryAttr3)
	out.TaskAttr1 = cloneOption(i.TaskAttr1)
	if len(i.Children) > 0 {
		out.Children = make([]Item, len(i.Children))
		for idx := range i.Children {
			out.Children[idx] = i.Children[idx].Clone()
		}
	}
	return out
}

// AncestorID returns the id of the item's ancestor of type t, if known.
func (i Item) AncestorID(t Type) (int64, bool) {
	var id *int64
	switch t {
	case TypeTheme:
		id = i.ThemeID
	case TypeEpic:
		id = i.EpicID
	}
	if id == nil {
		return 0, false
	}
	return *id, true
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneOption(o *Option) *Option {
	if o == nil {
		return nil
	}
	v := *o
	return &v
}

// Ref is a selection entry: an item id and the structural role it was
// selected under.
type Ref struct {
	ID   int64 `json:"id"`
	Role Role  `json:"type"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Role, r.ID)
}

// ParseRef reads "id", "parent:id" or "child:id". The role may be shortened
// to p or c. A bare id leaves the role empty.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	role, id, found := strings.Cut(raw, ":")
	if !found {
		role, id = "", raw
	}
	var r Ref
	switch strings.ToLower(role) {
	case "":
	case "p", "parent":
		r.Role = RoleParent
	case "c", "child":
		r.Role = RoleChild
	default:
		return Ref{}, fmt.Errorf("item: unknown role %q in %q", role, raw)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return Ref{}, fmt.Errorf("item: bad id in %q", raw)
	}
	r.ID = n
	return r, nil
}

// TypedRef is the persisted form of a selection entry: the server semantic
// type instead of the view-relative role.
type TypedRef struct {
	ID   int64 `json:"id"`
	Type Type  `json:"type"`
}

// UnmarshalJSON accepts ids written either as numbers or as numeric strings.
func (r *TypedRef) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Type string          `json:"type"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := parseFlexibleID(raw.ID)
	if err != nil {
		return err
	}
	r.ID = id
	r.Type = Type(strings.ToLower(strings.TrimSpace(raw.Type)))
	return nil
}

func parseFlexibleID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("item: missing id")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Option is one choice of an area attribute.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Attribute is a configurable attribute of stories or tasks in an area.
type Attribute struct {
	Name        string   `json:"name"`
	Options     []Option `json:"options"`
	IconEnabled bool     `json:"iconEnabled"`
	Icon        string   `json:"icon,omitempty"`
}

// Option looks up an option by id.
func (a Attribute) Option(id int64) (Option, bool) {
	for _, o := range a.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Area is the metadata of the backlog area being browsed.
type Area struct {
	Name       string    `json:"name"`
	StoryAttr1 Attribute `json:"storyAttr1"`
	StoryAttr2 Attribute `json:"storyAttr2"`
	StoryAttr3 Attribute `json:"storyAttr3"`
	TaskAttr1  Attribute `json:"taskAttr1"`
}

// Timestamp is a point in time on the wire. The server writes epoch
// milliseconds; RFC3339 strings are accepted too.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("item: timestamp %s: %w", b, err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("01/02/2006")
}
