package snake

import (
	"errors"

	"github.com/manifoldco/promptui"

	"tableflip.dev/backlog/pkg/dispatch"
)

var _ dispatch.Confirmer = Prompter{}

// Confirm asks a yes/no question. Anything but yes is a no.
func (p Prompter) Confirm(question string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
		Stdin:     p.stdin(),
		Stdout:    p.stdout(),
	}
	result, err := prompt.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ok, err := ParseBool(result)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

// Yes is a Confirmer that always agrees, for --yes.
var Yes = dispatch.ConfirmFunc(func(string) (bool, error) { return true, nil })
