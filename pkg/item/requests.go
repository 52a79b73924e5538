package item

import "fmt"

// Request shapes of the mutation endpoints. Field names follow the server
// JSON contract.

// NewTask is the body of createtask.
type NewTask struct {
	ParentID int64 `json:"parentId"`
}

// NewStory is the body of createstory. Epic and theme titles are set when a
// story is created under an epic row.
type NewStory struct {
	Added      *Timestamp `json:"added,omitempty"`
	EpicTitle  string     `json:"epicTitle,omitempty"`
	ThemeTitle string     `json:"themeTitle,omitempty"`
}

// NewEpic is the body of createepic.
type NewEpic struct {
	ThemeTitle string `json:"themeTitle,omitempty"`
}

// StoryUpdate is the body of updatestory.
type StoryUpdate struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CustomerSite    string     `json:"customerSite"`
	ContributorSite string     `json:"contributorSite"`
	Customer        string     `json:"customer"`
	Contributor     string     `json:"contributor"`
	EpicTitle       string     `json:"epicTitle"`
	ThemeTitle      string     `json:"themeTitle"`
	Added           *Timestamp `json:"added"`
	Archived        bool       `json:"archived"`
	Deadline        *Timestamp `json:"deadline"`
	StoryAttr1ID    string     `json:"storyAttr1Id"`
	StoryAttr2ID    string     `json:"storyAttr2Id"`
	StoryAttr3ID    string     `json:"storyAttr3Id"`
}

// TaskUpdate is the body of updatetask.
type TaskUpdate struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Owner          string `json:"owner"`
	CalculatedTime string `json:"calculatedTime"`
	TaskAttr1ID    string `json:"taskAttr1Id"`
}

// EpicUpdate is the body of updateepic.
type EpicUpdate struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ThemeTitle  string `json:"themeTitle"`
	Archived    bool   `json:"archived"`
}

// ThemeUpdate is the body of updatetheme.
type ThemeUpdate struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
}

// UpdateBody converts an edited item into the request shape of its type.
func UpdateBody(it Item) (any, error) {
	switch it.Type {
	case TypeStory:
		return StoryUpdate{
			ID:              it.ID,
			Title:           it.Title,
			Description:     it.Description,
			CustomerSite:    it.CustomerSite,
			ContributorSite: it.ContributorSite,
			Customer:        it.Customer,
			Contributor:     it.Contributor,
			EpicTitle:       it.EpicTitle,
			ThemeTitle:      it.ThemeTitle,
			Added:           it.Added,
			Archived:        it.Archived,
			Deadline:        it.Deadline,
			StoryAttr1ID:    optionID(it.StoryAttr1),
			StoryAttr2ID:    optionID(it.StoryAttr2),
			StoryAttr3ID:    optionID(it.StoryAttr3),
		}, nil
	case TypeTask:
		return TaskUpdate{
			ID:             it.ID,
			Title:          it.Title,
			Owner:          it.Owner,
			CalculatedTime: it.CalculatedTime,
			TaskAttr1ID:    optionID(it.TaskAttr1),
		}, nil
	case TypeEpic:
		return EpicUpdate{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			ThemeTitle:  it.ThemeTitle,
			Archived:    it.Archived,
		}, nil
	case TypeTheme:
		return ThemeUpdate{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			Archived:    it.Archived,
		}, nil
	}
	return nil, fmt.Errorf("item: cannot update item %d of type %q", it.ID, it.Type)
}

func optionID(o *Option) string {
	if o == nil {
		return ""
	}
	return fmt.Sprintf("%d", o.ID)
}

// MoveRequest is the body of move{view}. A nil LastItem moves the block to
// the end.
type MoveRequest struct {
	MovedItems []Ref `json:"movedItems"`
	LastItem   *Ref  `json:"lastItem"`
}
