package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.llib.dev/fixedseq"
	"go.llib.dev/frameless/pkg/cli"
	"go.llib.dev/frameless/pkg/logging"
)

func main() {
	cli.Main(context.Background(), Command{})
}

// Command builds a sequence of integers, pops from its back, then prints what remains.
type Command struct {
	Capacity int    `flag:"capacity" default:"100" desc:"maximum number of elements"`
	Push     string `flag:"push" default:"10,20" desc:"comma separated integers to push"`
	Pop      int    `flag:"pop" default:"1" desc:"number of elements to pop after pushing"`
	Strict   bool   `flag:"strict" desc:"fail the traversal on concurrent modification"`
	Verbose  bool   `flag:"verbose,v" desc:"log every push and pop to stderr"`

	// Logger receives the sequence events. When nil, they are logged to stderr.
	Logger *logging.Logger
}

func (cmd Command) Summary() string { return "push and pop on a fixed capacity sequence" }

func (cmd Command) ServeCLI(w cli.Response, r *cli.Request) {
	values, err := parseValues(cmd.Push)
	if err != nil {
		w.ExitCode(cli.ExitCodeBadRequest)
		fmt.Fprintf(w, "invalid -push value: %s\n", err.Error())
		return
	}
	if cmd.Pop < 0 {
		w.ExitCode(cli.ExitCodeBadRequest)
		fmt.Fprintf(w, "invalid -pop value: %d\n", cmd.Pop)
		return
	}

	c, err := fixedseq.LoadConfig()
	if err != nil {
		cli.HandleError(w, r, err)
		return
	}
	opts := []fixedseq.Option{c, fixedseq.WithLogger(cmd.logger())}
	if cmd.Strict {
		opts = append(opts, fixedseq.WithStrictIteration())
	}

	seq, err := fixedseq.New[int](cmd.Capacity, opts...)
	if err != nil {
		cli.HandleError(w, r, err)
		return
	}
	defer seq.Close()

	for _, v := range values {
		if err := seq.PushBack(v); err != nil {
			cli.HandleError(w, r, err)
			return
		}
	}
	for range cmd.Pop {
		if err := seq.PopBack(); err != nil {
			cli.HandleError(w, r, err)
			return
		}
	}

	it := seq.Iterator()
	for it.First(); !it.IsDone(); it.Next() {
		v, err := it.Current()
		if err != nil {
			cli.HandleError(w, r, err)
			return
		}
		fmt.Fprintln(w, v)
	}
	if err := it.Err(); err != nil {
		cli.HandleError(w, r, err)
	}
}

func (cmd Command) logger() *logging.Logger {
	l := cmd.Logger
	if l == nil {
		l = &logging.Logger{Out: os.Stderr}
	}
	if cmd.Verbose {
		l.Level = logging.LevelDebug
	}
	return l
}

func parseValues(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var vs []int
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}
