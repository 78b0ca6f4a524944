package slash

import "fmt"

// Resolution is the outcome of walking an interaction's option path.
type Resolution struct {
	// Command is the node whose handler runs.
	Command *Command
	// Group and Subcommand record the nodes selected on the way, if any.
	Group      *Command
	Subcommand *Command
	// Args maps option names of the final level to their raw values.
	Args map[string]any
}

// Resolve walks root using the option path of an interaction. At each level an
// option whose name matches a child selects it: a group is descended into
// with that option's sub-options, a sub-command is the final target and its
// sub-options become the arguments. When no option names a child the current
// node is the target.
//
// Discord sends at most one selector per level. Two selectors at the same
// level are rejected with ErrAmbiguousRoute rather than guessed.
func Resolve(root *Command, opts []*InteractionOption) (*Resolution, error) {
	res := &Resolution{}
	if err := res.descend(root, opts); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Resolution) descend(node *Command, opts []*InteractionOption) error {
	var (
		selector *InteractionOption
		child    *Command
	)
	for _, o := range opts {
		c, ok := node.Child(o.Name)
		if !ok {
			continue
		}
		if child != nil {
			return fmt.Errorf("%w: %q and %q both selected under %q",
				ErrAmbiguousRoute, child.Name, c.Name, node.QualifiedName())
		}
		selector, child = o, c
	}

	if child == nil {
		r.Command = node
		r.Args = flatten(opts)
		return nil
	}

	switch child.Kind() {
	case KindSubCommandGroup:
		r.Group = child
		return r.descend(child, selector.Options)
	case KindSubCommand:
		r.Subcommand = child
		r.Command = child
		r.Args = flatten(selector.Options)
		return nil
	default:
		return fmt.Errorf("%w: child %q of %q has kind %s",
			ErrConfiguration, child.Name, node.QualifiedName(), child.Kind())
	}
}

func flatten(opts []*InteractionOption) map[string]any {
	args := make(map[string]any, len(opts))
	for _, o := range opts {
		if o.Type.IsCommand() {
			continue
		}
		args[o.Name] = o.Value
	}
	return args
}
