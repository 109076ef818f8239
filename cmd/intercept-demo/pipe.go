package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/KOMKZ/go-yogan-intercept/application"
	"github.com/KOMKZ/go-yogan-intercept/event"
	"github.com/KOMKZ/go-yogan-intercept/intercept"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const lineEvent = "line"

type pipeOptions struct {
	upper  bool
	prefix string
}

func newPipeCmd(app *application.CLIApplication) *cobra.Command {
	opts := &pipeOptions{}
	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Read lines from stdin, run them through the interceptors and print the result",
		Long: `Every input line is emitted as a "line" event. Interceptors trim it, drop blank lines,
reject comment lines (reported on stderr) and optionally upper-case it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			em, err := app.Emitter()
			if err != nil {
				return err
			}
			return runPipe(cmd, app, em, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.upper, "upper", false, "upper-case every line")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "prepend a prefix to every line")
	return cmd
}

func runPipe(cmd *cobra.Command, app *application.CLIApplication, em *intercept.Emitter, opts *pipeOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var printed, rejected int
	em.On(lineEvent, event.NewListener(func(args ...any) {
		printed++
		fmt.Fprintln(out, args...)
	}))
	em.On(event.EventError, event.NewListener(func(args ...any) {
		rejected++
		fmt.Fprintln(errOut, "rejected:", args[0])
	}))

	em.Intercept(lineEvent, intercept.NewInterceptor(func(next intercept.Next, args ...any) {
		next(nil, strings.TrimSpace(args[0].(string)))
	}))
	// blank lines never reach the listeners
	em.Intercept(lineEvent, intercept.NewInterceptor(func(next intercept.Next, args ...any) {
		if args[0].(string) != "" {
			next(nil, args...)
		}
	}))
	em.Intercept(lineEvent, intercept.NewInterceptor(func(next intercept.Next, args ...any) {
		line := args[0].(string)
		if strings.HasPrefix(line, "#") {
			next(fmt.Errorf("comment line %q", line))
			return
		}
		next(nil, line)
	}))
	if opts.upper {
		em.Intercept(lineEvent, intercept.NewInterceptor(func(next intercept.Next, args ...any) {
			next(nil, strings.ToUpper(args[0].(string)))
		}))
	}
	if opts.prefix != "" {
		em.Intercept(lineEvent, intercept.NewInterceptor(func(next intercept.Next, args ...any) {
			next(nil, opts.prefix+args[0].(string))
		}))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	var read int
	for scanner.Scan() {
		read++
		em.Emit(lineEvent, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input failed: %w", err)
	}

	app.Logger().InfoCtx(cmd.Context(), "pipe finished",
		zap.Int("read", read),
		zap.Int("printed", printed),
		zap.Int("rejected", rejected),
		zap.Int("interceptors", em.InterceptorCount(lineEvent)),
	)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "intercept-demo", version)
		},
	}
}
