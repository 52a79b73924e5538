package snake

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/pflag"
)

// FlagString asks for the value of a flag taking one value. An empty answer
// keeps the default.
func (p Prompter) FlagString(f *pflag.Flag) (string, error) {
	_, _ = fmt.Fprintf(p.out(), "%s: %s [%s] Default: %s\n", asFlags(f), f.Usage, f.Value.Type(), f.DefValue)

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf(`["%s"]`, f.DefValue),
		Templates: answerTemplates,
		Validate: func(input string) error {
			if len(input) == 0 && len(f.DefValue) == 0 {
				return errors.New("empty")
			}
			if input == "" {
				return nil
			}
			// reject values the flag itself would refuse
			return f.Value.Set(input)
		},
		Stdin:  p.stdin(),
		Stdout: p.stdout(),
	}

	result, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if result == "" {
		result = f.DefValue
	}
	return fmt.Sprintf(`--%s=%s`, f.Name, result), nil
}
