package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/nymphaea/lang/builtins"
	"github.com/mna/nymphaea/lang/machine"
	"github.com/mna/nymphaea/lang/types"
)

func (c *Cmd) Union(ctx context.Context, stdio mainer.Stdio, args []string) error {
	th := c.newThread("union")

	var res types.Value
	for i, arg := range args {
		v, err := ParseLiteral(arg)
		if err != nil {
			return printError(stdio, fmt.Errorf("argument %d: %w", i+1, err))
		}
		if res == nil {
			res = v
			continue
		}
		if res, err = machine.Binary(th, "|", res, v); err != nil {
			return printError(stdio, err)
		}
	}

	n, err := machine.CallMethod(th, res, "__len__")
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprintf(stdio.Stdout, "%s\nlen: %s\n", res, n)
	return nil
}

func (c *Cmd) newThread(name string) *machine.Thread {
	return &machine.Thread{
		Name:         name,
		Builtins:     builtins.NewRegistry(),
		MaxCallDepth: c.config().MaxCallDepth,
	}
}
