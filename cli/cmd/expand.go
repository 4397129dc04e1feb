package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ardnew/stamp/cli/cmd/watch"
	"github.com/ardnew/stamp/log"
	"github.com/ardnew/stamp/pkg"
	"github.com/ardnew/stamp/tmpl"
)

// Expand expands a template against data and prints the resulting markup.
type Expand struct {
	Template string        `arg:"" default:"-" help:"Template file, name in the search path, or '-' for stdin" optional:""`
	Data     []string      `help:"Data file(s) merged in order (JSON, YAML, HCL)"    placeholder:"FILE"     short:"d" type:"existingfile"`
	Set      []string      `help:"Assign the value of EXPR to KEY after loading data" placeholder:"KEY=EXPR" sep:"none" short:"s"`
	Output   string        `help:"Write output to FILE instead of stdout"            placeholder:"FILE"     short:"o" type:"path"`
	Timeout  time.Duration `default:"30s"  help:"Maximum time to wait for deferred values"`
	NoWait   bool          `help:"Print immediately, leaving deferred values empty"`
	Watch    bool          `help:"Show deferred values settling in a live view" short:"w"`
	Lenient  bool          `help:"Render iteration over absent keys as empty"`
	MaxDepth int           `default:"100"  help:"Maximum block nesting depth"`
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := loadTemplate(ctx, e.Template)
	if err != nil {
		return err
	}

	values, err := loadData(ctx, e.Data, e.Set)
	if err != nil {
		return err
	}

	frag, err := tmpl.New(e.options()...).Expand(ctx, text, values)
	if err != nil {
		return ErrExpand.With(slog.String("template", e.Template)).Wrap(err)
	}

	log.DebugContext(ctx, "expanded template",
		slog.String("template", e.Template),
		slog.Int("pending", frag.Pending()),
	)

	werr := e.settle(ctx, frag)

	if err := e.write(ctx, frag); err != nil {
		return err
	}

	return werr
}

func (e *Expand) options() []tmpl.Option {
	opts := []tmpl.Option{
		tmpl.WithLogger(log.Default()),
		tmpl.WithMaxDepth(e.MaxDepth),
	}

	if e.Lenient {
		opts = append(opts, tmpl.WithStrategy(tmpl.KindAbsent, tmpl.SkipStrategy))
	}

	return opts
}

// settle waits for the deferred values of frag as configured. A timeout
// cancels the values still pending so that the fragment can be written as it
// stands.
func (e *Expand) settle(ctx context.Context, frag *tmpl.Fragment) error {
	switch {
	case e.NoWait:
		frag.Cancel()

		return nil

	case e.Watch:
		return watch.Run(ctx, frag, e.Template, os.Stderr)
	}

	wctx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc

		wctx, cancel = context.WithTimeoutCause(ctx, e.Timeout, pkg.ErrTimeout)
		defer cancel()
	}

	err := frag.Wait(wctx)
	if errors.Is(err, pkg.ErrTimeout) {
		frag.Cancel()
		log.WarnContext(ctx, "deferred values did not settle",
			slog.Duration("timeout", e.Timeout),
			slog.Int("pending", frag.Pending()),
		)

		return pkg.ErrTimeout.Wrapf("after %s", e.Timeout)
	}

	return err
}

func (e *Expand) write(ctx context.Context, frag *tmpl.Fragment) (err error) {
	_, out := stdioFrom(ctx)

	if e.Output != "" {
		f, err := os.Create(e.Output)
		if err != nil {
			return pkg.ErrWriteOutput.Wrapf("file %q", e.Output).Wrap(err)
		}

		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = pkg.ErrWriteOutput.Wrapf("file %q", e.Output).Wrap(cerr)
			}
		}()

		out = f
	}

	if err := frag.Render(out); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	if _, err := io.WriteString(out, "\n"); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}
