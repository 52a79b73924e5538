package snake

import (
	"errors"

	"github.com/manifoldco/promptui"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/printers"
	"tableflip.dev/backlog/pkg/render"
)

// ErrNoRows is returned when there is nothing to pick from.
var ErrNoRows = errors.New("snake: no rows to pick from")

// Choice is one pickable row with its printed line.
type Choice struct {
	Line string
	Row  render.Row
}

// Choices returns the displayed rows of l, restricted to role unless role is
// empty, with their printed line.
func Choices(l render.List, role item.Role) []Choice {
	var out []Choice
	for _, r := range l.Displayed() {
		if role != "" && r.Role != role {
			continue
		}
		out = append(out, Choice{Line: printers.Line(r), Row: r})
	}
	return out
}

// PickRow lets the user choose one displayed row of l.
func (p Prompter) PickRow(label string, l render.List, role item.Role) (render.Row, error) {
	choices := Choices(l, role)
	if len(choices) == 0 {
		return render.Row{}, ErrNoRows
	}
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜ {{ .Line }}",
		Inactive: "  {{ .Line }}",
		Selected: "{{ .Row.Item.Title | bold }}",
		Details: `
--------- {{ .Row.Item.Type }} {{ .Row.Item.ID }} ----------
{{ with .Row.Item.Owner }}owner: {{ . }}
{{ end }}{{ with .Row.Item.Description }}{{ . }}{{ end }}`,
	}
	prompt := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     choices,
		Templates: templates,
		Size:      10,
		Searcher: func(input string, index int) bool {
			return matches(choices[index].Row.Item.Title, input)
		},
		Stdin:  p.stdin(),
		Stdout: p.stdout(),
	}
	i, _, err := prompt.Run()
	if err != nil {
		return render.Row{}, err
	}
	return choices[i].Row, nil
}
