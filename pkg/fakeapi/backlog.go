// Package fakeapi is an in-memory backlog server speaking the JSON contract
// of the real one. It backs the serve command and the tests of the client
// packages.
package fakeapi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"tableflip.dev/backlog/pkg/item"
)

var (
	errNotFound = errors.New("Not Found")
	errConflict = errors.New("Conflict")
)

// Backlog is the data of one area. Each level is kept in priority order.
type Backlog struct {
	mu sync.Mutex

	area    item.Area
	themes  []*item.Item
	epics   []*item.Item
	stories []*item.Item
	tasks   []*item.Item
	nextID  int64
	now     func() time.Time
}

// NewBacklog returns an empty backlog for area with a default set of
// attributes.
func NewBacklog(area string) *Backlog {
	return &Backlog{
		area: item.Area{
			Name: area,
			StoryAttr1: item.Attribute{Name: "Status", Options: []item.Option{
				{ID: 1, Name: "Open"}, {ID: 2, Name: "In progress"}, {ID: 3, Name: "Done"},
			}},
			StoryAttr2: item.Attribute{Name: "Size", Options: []item.Option{
				{ID: 4, Name: "S"}, {ID: 5, Name: "M"}, {ID: 6, Name: "L"},
			}},
			StoryAttr3: item.Attribute{Name: "Risk", Options: []item.Option{
				{ID: 7, Name: "Low"}, {ID: 8, Name: "High"},
			}},
			TaskAttr1: item.Attribute{Name: "Status", Options: []item.Option{
				{ID: 9, Name: "Todo"}, {ID: 10, Name: "Done"},
			}},
		},
		nextID: 1,
		now:    time.Now,
	}
}

// Area returns the area name.
func (b *Backlog) Area() string {
	return b.area.Name
}

// Fixture is the YAML layout of a seeded backlog.
type Fixture struct {
	Area   string         `yaml:"area"`
	Themes []FixtureTheme `yaml:"themes"`
}

type FixtureTheme struct {
	Title    string        `yaml:"title"`
	Archived bool          `yaml:"archived"`
	Epics    []FixtureEpic `yaml:"epics"`
}

type FixtureEpic struct {
	Title    string         `yaml:"title"`
	Archived bool           `yaml:"archived"`
	Stories  []FixtureStory `yaml:"stories"`
}

type FixtureStory struct {
	Title    string   `yaml:"title"`
	Customer string   `yaml:"customer"`
	Archived bool     `yaml:"archived"`
	Tasks    []string `yaml:"tasks"`
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (*Backlog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFixture(f)
}

// ReadFixture decodes a YAML fixture.
func ReadFixture(r io.Reader) (*Backlog, error) {
	var fx Fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("fakeapi: fixture: %w", err)
	}
	if fx.Area == "" {
		return nil, errors.New("fakeapi: fixture: area is required")
	}
	b := NewBacklog(fx.Area)
	for _, t := range fx.Themes {
		theme := b.addTheme(t.Title)
		theme.Archived = t.Archived
		for _, e := range t.Epics {
			epic := b.addEpic(e.Title, theme)
			epic.Archived = e.Archived
			for _, s := range e.Stories {
				story := b.addStory(s.Title, epic, theme)
				story.Customer = s.Customer
				story.Archived = s.Archived
				for _, title := range s.Tasks {
					b.addTask(title, story)
				}
			}
		}
	}
	return b, nil
}

// Demo returns a small seeded backlog.
func Demo(area string) *Backlog {
	b := NewBacklog(area)
	platform := b.addTheme("Platform")
	login := b.addEpic("Login", platform)
	s := b.addStory("Password reset", login, platform)
	b.addTask("Mail template", s)
	b.addTask("Token expiry", s)
	b.addStory("Single sign-on", login, platform)
	billing := b.addEpic("Billing", platform)
	b.addTask("Export CSV", b.addStory("Invoices", billing, platform))
	mobile := b.addTheme("Mobile")
	b.addStory("Offline mode", b.addEpic("Sync", mobile), mobile)
	return b
}

func (b *Backlog) id() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func ptr(v int64) *int64 { return &v }

func (b *Backlog) addTheme(title string) *item.Item {
	t := &item.Item{ID: b.id(), Type: item.TypeTheme, Title: title}
	b.themes = append(b.themes, t)
	return t
}

func (b *Backlog) addEpic(title string, theme *item.Item) *item.Item {
	e := &item.Item{ID: b.id(), Type: item.TypeEpic, Title: title}
	setTheme(e, theme)
	b.epics = append(b.epics, e)
	return e
}

func (b *Backlog) addStory(title string, epic, theme *item.Item) *item.Item {
	s := &item.Item{ID: b.id(), Type: item.TypeStory, Title: title, Added: item.NewTimestamp(b.now())}
	setTheme(s, theme)
	setEpic(s, epic)
	b.stories = append(b.stories, s)
	return s
}

func (b *Backlog) addTask(title string, story *item.Item) *item.Item {
	t := &item.Item{ID: b.id(), Type: item.TypeTask, Title: title, ParentID: ptr(story.ID)}
	b.tasks = append(b.tasks, t)
	return t
}

func setTheme(it, theme *item.Item) {
	if theme == nil {
		it.ThemeID, it.ThemeTitle = nil, ""
		return
	}
	it.ThemeID, it.ThemeTitle = ptr(theme.ID), theme.Title
}

func setEpic(it, epic *item.Item) {
	if epic == nil {
		it.EpicID, it.EpicTitle = nil, ""
		return
	}
	it.EpicID, it.EpicTitle = ptr(epic.ID), epic.Title
}

func (b *Backlog) level(t item.Type) *[]*item.Item {
	switch t {
	case item.TypeTheme:
		return &b.themes
	case item.TypeEpic:
		return &b.epics
	case item.TypeStory:
		return &b.stories
	case item.TypeTask:
		return &b.tasks
	}
	return nil
}

func find(list []*item.Item, id int64) (int, *item.Item) {
	for i, it := range list {
		if it.ID == id {
			return i, it
		}
	}
	return -1, nil
}

func (b *Backlog) byTitle(list []*item.Item, title string, theme *item.Item) *item.Item {
	for _, it := range list {
		if !strings.EqualFold(it.Title, title) {
			continue
		}
		if theme != nil && (it.ThemeID == nil || *it.ThemeID != theme.ID) {
			continue
		}
		return it
	}
	return nil
}

// themeNamed finds or creates the theme title. An empty title is no theme.
func (b *Backlog) themeNamed(title string) *item.Item {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if t := b.byTitle(b.themes, title, nil); t != nil {
		return t
	}
	return b.addTheme(title)
}

// epicNamed finds or creates the epic title inside theme.
func (b *Backlog) epicNamed(title string, theme *item.Item) *item.Item {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if e := b.byTitle(b.epics, title, theme); e != nil {
		return e
	}
	return b.addEpic(title, theme)
}

// Read returns the parents of view, each with its children, sorted by order.
func (b *Backlog) Read(view item.View, order string) ([]item.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var parents, children []*item.Item
	var belongs func(child, parent *item.Item) bool
	switch view {
	case item.ViewThemeEpic:
		parents, children = b.themes, b.epics
		belongs = func(c, p *item.Item) bool { return c.ThemeID != nil && *c.ThemeID == p.ID }
	case item.ViewEpicStory:
		parents, children = b.epics, b.stories
		belongs = func(c, p *item.Item) bool { return c.EpicID != nil && *c.EpicID == p.ID }
	case item.ViewStoryTask:
		parents, children = b.stories, b.tasks
		belongs = func(c, p *item.Item) bool { return c.ParentID != nil && *c.ParentID == p.ID }
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}

	out := make([]item.Item, 0, len(parents))
	for prio, p := range parents {
		cp := p.Clone()
		cp.Prio = prio
		cp.Children = nil
		for cprio, c := range children {
			if belongs(c, p) {
				cc := c.Clone()
				cc.Prio = cprio
				cp.Children = append(cp.Children, cc)
			}
		}
		out = append(out, cp)
	}
	sortParents(out, order)
	return out, nil
}

func sortParents(parents []item.Item, order string) {
	var less func(a, b item.Item) bool
	switch order {
	case "title":
		less = func(a, b item.Item) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case "id":
		less = func(a, b item.Item) bool { return a.ID < b.ID }
	case "added":
		less = func(a, b item.Item) bool {
			if a.Added == nil || b.Added == nil {
				return a.Added != nil
			}
			return a.Added.Before(b.Added.Time)
		}
	default:
		return
	}
	sort.SliceStable(parents, func(i, j int) bool { return less(parents[i], parents[j]) })
}

// ReadArea returns the area metadata.
func (b *Backlog) ReadArea() item.Area {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.area
}

// CreateTask adds a task to story parentID. A nil id means the story does
// not exist.
func (b *Backlog) CreateTask(req item.NewTask) *int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, story := find(b.stories, req.ParentID)
	if story == nil {
		return nil
	}
	return ptr(b.addTask("New task", story).ID)
}

// CreateStory adds a story, inside the named epic and theme when given.
func (b *Backlog) CreateStory(req item.NewStory) *int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	theme := b.themeNamed(req.ThemeTitle)
	epic := b.epicNamed(req.EpicTitle, theme)
	s := b.addStory("New story", epic, theme)
	if req.Added != nil && !req.Added.IsZero() {
		s.Added = item.NewTimestamp(req.Added.Time)
	}
	return ptr(s.ID)
}

// CreateEpic adds an epic, inside the named theme when given.
func (b *Backlog) CreateEpic(req item.NewEpic) *int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ptr(b.addEpic("New epic", b.themeNamed(req.ThemeTitle)).ID)
}

// CreateTheme adds a theme.
func (b *Backlog) CreateTheme() *int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ptr(b.addTheme("New theme").ID)
}

func (b *Backlog) option(a item.Attribute, id string) *item.Option {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	for _, o := range a.Options {
		if fmt.Sprint(o.ID) == id {
			o := o
			return &o
		}
	}
	return nil
}

// UpdateStory applies an edited story.
func (b *Backlog) UpdateStory(u item.StoryUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, s := find(b.stories, u.ID)
	if s == nil {
		return errNotFound
	}
	s.Title, s.Description, s.Archived = u.Title, u.Description, u.Archived
	s.Customer, s.CustomerSite = u.Customer, u.CustomerSite
	s.Contributor, s.ContributorSite = u.Contributor, u.ContributorSite
	s.Added, s.Deadline = u.Added, u.Deadline
	s.StoryAttr1 = b.option(b.area.StoryAttr1, u.StoryAttr1ID)
	s.StoryAttr2 = b.option(b.area.StoryAttr2, u.StoryAttr2ID)
	s.StoryAttr3 = b.option(b.area.StoryAttr3, u.StoryAttr3ID)
	theme := b.themeNamed(u.ThemeTitle)
	setTheme(s, theme)
	setEpic(s, b.epicNamed(u.EpicTitle, theme))
	return nil
}

// UpdateTask applies an edited task.
func (b *Backlog) UpdateTask(u item.TaskUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, t := find(b.tasks, u.ID)
	if t == nil {
		return errNotFound
	}
	t.Title, t.Owner, t.CalculatedTime = u.Title, u.Owner, u.CalculatedTime
	t.TaskAttr1 = b.option(b.area.TaskAttr1, u.TaskAttr1ID)
	return nil
}

// UpdateEpic applies an edited epic. Its stories follow a theme change.
func (b *Backlog) UpdateEpic(u item.EpicUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, e := find(b.epics, u.ID)
	if e == nil {
		return errNotFound
	}
	e.Title, e.Description, e.Archived = u.Title, u.Description, u.Archived
	setTheme(e, b.themeNamed(u.ThemeTitle))
	for _, s := range b.stories {
		if s.EpicID != nil && *s.EpicID == e.ID {
			s.EpicTitle = e.Title
			s.ThemeID, s.ThemeTitle = e.ThemeID, e.ThemeTitle
		}
	}
	return nil
}

// UpdateTheme applies an edited theme.
func (b *Backlog) UpdateTheme(u item.ThemeUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, t := find(b.themes, u.ID)
	if t == nil {
		return errNotFound
	}
	t.Title, t.Description, t.Archived = u.Title, u.Description, u.Archived
	for _, list := range [][]*item.Item{b.epics, b.stories} {
		for _, it := range list {
			if it.ThemeID != nil && *it.ThemeID == t.ID {
				it.ThemeTitle = t.Title
			}
		}
	}
	return nil
}

// Clone copies the item id of type t right after the original. Stories copy
// their tasks when withChildren is set.
func (b *Backlog) Clone(t item.Type, id int64, withChildren bool) (*int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.level(t)
	if list == nil || t == item.TypeTask {
		return nil, fmt.Errorf("cannot clone %s", t)
	}
	i, orig := find(*list, id)
	if orig == nil {
		return nil, errNotFound
	}
	cp := orig.Clone()
	cp.ID = b.id()
	cp.Title = orig.Title + " (copy)"
	*list = append((*list)[:i+1], append([]*item.Item{&cp}, (*list)[i+1:]...)...)
	if withChildren && t == item.TypeStory {
		for _, task := range append([]*item.Item(nil), b.tasks...) {
			if task.ParentID != nil && *task.ParentID == orig.ID {
				b.addTask(task.Title, &cp).Owner = task.Owner
			}
		}
	}
	return ptr(cp.ID), nil
}

// Delete removes the item id of type t. Stories take their tasks with them;
// removing an epic or theme detaches its members.
func (b *Backlog) Delete(t item.Type, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.level(t)
	if list == nil {
		return fmt.Errorf("cannot delete %s", t)
	}
	i, it := find(*list, id)
	if it == nil {
		return errConflict
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	switch t {
	case item.TypeStory:
		kept := b.tasks[:0]
		for _, task := range b.tasks {
			if task.ParentID == nil || *task.ParentID != id {
				kept = append(kept, task)
			}
		}
		b.tasks = kept
	case item.TypeEpic:
		for _, s := range b.stories {
			if s.EpicID != nil && *s.EpicID == id {
				setEpic(s, nil)
			}
		}
	case item.TypeTheme:
		for _, l := range [][]*item.Item{b.epics, b.stories} {
			for _, x := range l {
				if x.ThemeID != nil && *x.ThemeID == id {
					setTheme(x, nil)
				}
			}
		}
	}
	return nil
}

// Move reorders the moved rows of view in front of req.LastItem, or to the
// end when it is nil.
//
// Parents move among parents; a child anchor stands for its parent. Children
// dropped in front of a child join that child's parent; dropped in front of a
// parent they join the end of the group above it, or the start of the first
// group.
func (b *Backlog) Move(view item.View, req item.MoveRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(req.MovedItems) == 0 {
		return nil
	}
	role := req.MovedItems[0].Role
	for _, m := range req.MovedItems {
		if m.Role != role {
			return errors.New("moved items mix parents and children")
		}
	}
	parents := b.level(view.ParentType())
	children := b.level(view.ChildType())
	if parents == nil || children == nil {
		return fmt.Errorf("unknown view %q", view)
	}
	if role == item.RoleParent {
		return b.moveParents(parents, children, view, req)
	}
	return b.moveChildren(parents, children, view, req)
}

func (b *Backlog) moveParents(parents, children *[]*item.Item, view item.View, req item.MoveRequest) error {
	moved, rest, err := split(*parents, req.MovedItems)
	if err != nil {
		return err
	}
	at := len(rest)
	if req.LastItem != nil {
		anchor := req.LastItem.ID
		if req.LastItem.Role == item.RoleChild {
			_, c := find(*children, anchor)
			if c == nil {
				return errNotFound
			}
			p := parentOf(view, c)
			if p == nil {
				return errNotFound
			}
			anchor = *p
		}
		if at, _ = find(rest, anchor); at < 0 {
			return errNotFound
		}
	}
	*parents = insert(rest, moved, at)
	return nil
}

func (b *Backlog) moveChildren(parents, children *[]*item.Item, view item.View, req item.MoveRequest) error {
	moved, rest, err := split(*children, req.MovedItems)
	if err != nil {
		return err
	}
	var (
		owner *item.Item
		at    = len(rest)
	)
	switch {
	case req.LastItem == nil:
		// end of the last group
		if n := len(*parents); n > 0 {
			owner = (*parents)[n-1]
		}
	case req.LastItem.Role == item.RoleChild:
		var c *item.Item
		if at, c = find(rest, req.LastItem.ID); c == nil {
			return errNotFound
		}
		if p := parentOf(view, c); p != nil {
			_, owner = find(*parents, *p)
		}
	default:
		pi, _ := find(*parents, req.LastItem.ID)
		if pi < 0 {
			return errNotFound
		}
		if pi == 0 {
			owner = (*parents)[0]
			at = 0
			for i, c := range rest {
				if p := parentOf(view, c); p != nil && *p == owner.ID {
					at = i
					break
				}
			}
		} else {
			owner = (*parents)[pi-1]
			for i, c := range rest {
				if p := parentOf(view, c); p != nil && *p == owner.ID {
					at = i + 1
				}
			}
		}
	}
	if owner != nil {
		for _, m := range moved {
			b.reparent(view, m, owner)
		}
	}
	*children = insert(rest, moved, at)
	return nil
}

func (b *Backlog) reparent(view item.View, child, parent *item.Item) {
	switch view {
	case item.ViewThemeEpic:
		setTheme(child, parent)
		for _, s := range b.stories {
			if s.EpicID != nil && *s.EpicID == child.ID {
				setTheme(s, parent)
			}
		}
	case item.ViewEpicStory:
		setEpic(child, parent)
		child.ThemeID, child.ThemeTitle = parent.ThemeID, parent.ThemeTitle
	case item.ViewStoryTask:
		child.ParentID = ptr(parent.ID)
	}
}

func parentOf(view item.View, child *item.Item) *int64 {
	switch view {
	case item.ViewThemeEpic:
		return child.ThemeID
	case item.ViewEpicStory:
		return child.EpicID
	default:
		return child.ParentID
	}
}

// split separates the moved refs, in request order, from the rest.
func split(list []*item.Item, refs []item.Ref) (moved, rest []*item.Item, err error) {
	ids := make(map[int64]bool, len(refs))
	for _, r := range refs {
		ids[r.ID] = true
	}
	for _, it := range list {
		if !ids[it.ID] {
			rest = append(rest, it)
		}
	}
	for _, r := range refs {
		_, it := find(list, r.ID)
		if it == nil {
			return nil, nil, errNotFound
		}
		moved = append(moved, it)
	}
	return moved, rest, nil
}

func insert(rest, moved []*item.Item, at int) []*item.Item {
	out := make([]*item.Item, 0, len(rest)+len(moved))
	out = append(out, rest[:at]...)
	out = append(out, moved...)
	return append(out, rest[at:]...)
}

// Themes returns theme titles containing term.
func (b *Backlog) Themes(term string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return titles(b.themes, term, func(*item.Item) bool { return true })
}

// Epics returns epic titles of theme containing term.
func (b *Backlog) Epics(theme, term string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return titles(b.epics, term, func(e *item.Item) bool {
		return theme == "" || strings.EqualFold(e.ThemeTitle, theme)
	})
}

func titles(list []*item.Item, term string, keep func(*item.Item) bool) []string {
	term = strings.ToLower(term)
	out := []string{}
	for _, it := range list {
		if keep(it) && strings.Contains(strings.ToLower(it.Title), term) {
			out = append(out, it.Title)
		}
	}
	return out
}
