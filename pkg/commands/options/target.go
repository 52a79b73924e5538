package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/item"
)

// TargetOptions names the rows a command acts on.
type TargetOptions struct {
	Refs []item.Ref
}

// RowArgs is the cobra Args validator filling o from positional row
// references ("3", "parent:3", "c:4").
func RowArgs(o *TargetOptions, min int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min {
			return fmt.Errorf("requires at least %d row(s), got %d", min, len(args))
		}
		o.Refs = o.Refs[:0]
		for _, a := range args {
			ref, err := item.ParseRef(a)
			if err != nil {
				return err
			}
			o.Refs = append(o.Refs, ref)
		}
		return nil
	}
}

// First returns the first target.
func (o *TargetOptions) First() item.Ref {
	if len(o.Refs) == 0 {
		return item.Ref{}
	}
	return o.Refs[0]
}
