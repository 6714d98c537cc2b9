package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
	"github.com/mna/nymphaea/internal/config"
	"github.com/mna/nymphaea/lang/cext"
	"github.com/mna/nymphaea/lang/machine"
)

const binName = "nymphaea"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<literal>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<literal>...]
       %[1]s -h|--help
       %[1]s -v|--version

Developer tool for the %[1]s value model and native wrapper layer.

The <command> can be one of:
       union                     Print the union of the set literals,
                                 computed with the | operator.
       wrap                      Wrap each literal in its native
                                 wrapper, move it to a native heap and
                                 print its native state.

A <literal> is an int, a float, a double-quoted string, true,
false, nil, a tuple (a, b), an array [a, b], a set {a, b} or
set(), or Name() for an instance of a new class Name.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -c --config <path>        Load the configuration from the YAML
                                 file at <path>. The NYMPHAEA_*
                                 environment variables override it.
       --debug                   Log at debug level on stderr.

Valid flag options for the <wrap> command are:
       --elem-size <n>           Size in bytes of the native elements
                                 of arrays and tuples, one of 1, 2,
                                 4 or 8 (default 8).

More information on the %[1]s repository:
       https://github.com/mna/nymphaea
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Config string `flag:"c,config"`
	Debug  bool   `flag:"debug"`

	ElemSize int `flag:"elem-size"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
	cfg   *config.Config
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one literal must be provided", cmdName)
	}

	if c.flags["elem-size"] {
		if cmdName != "wrap" {
			return fmt.Errorf("%s: invalid flag 'elem-size'", cmdName)
		}
		switch c.ElemSize {
		case 1, 2, 4, 8:
		default:
			return fmt.Errorf("%s: invalid element size %d", cmdName, c.ElemSize)
		}
	}

	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false, // configuration overrides use the NYMPHAEA_ variables
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		_ = printError(stdio, err)
		return mainer.Failure
	}
	if c.Debug {
		cfg.LogLevel = "debug"
	}
	logger, err := cfg.NewLogger(stdio.Stderr)
	if err != nil {
		_ = printError(stdio, err)
		return mainer.Failure
	}
	defer func() { _ = logger.Sync() }()
	machine.SetLogger(logger.Named("machine"))
	cext.SetLogger(logger.Named("cext"))
	c.cfg = cfg

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}
	return mainer.Success
}

// config returns the loaded configuration, or the default one if the command
// is not run from Main.
func (c *Cmd) config() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
