package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	postfix "github.com/goliatone/go-postfix"
	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/source"
)

var errNotFound = errors.New("path not found")

// rootFlags are shared by every subcommand.
type rootFlags struct {
	template   string
	separator  string
	format     string
	postfix    string
	priorities []string
	defaultFix string
	locales    []string
	all        bool
	noCache    bool
	verbose    bool
}

func newRootCommand(version, commit, date string) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "postfix",
		Short: "Inspect families of postfixed configuration and message files",
		Long: `postfix resolves dotted paths against a family of postfixed sources such as
messages.properties, messages_cs.properties and messages_cs-CZ.properties.

Scalars resolve to the strongest source that defines them. Objects and arrays
from JSON and YAML sources are merged along the priority chain.

Example:
  postfix get --template ./config/app --priority dev database
  postfix trace --template ./i18n/messages --locale cs-CZ greeting`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.template, "template", "t", "", "source template: directory plus base name, e.g. ./i18n/messages")
	pf.StringVar(&flags.separator, "separator", string(source.DefaultSeparator), "character between the base name and the postfix")
	pf.StringVarP(&flags.format, "format", "f", "", "source format (properties, json, yaml); inferred from the files when empty")
	pf.StringVarP(&flags.postfix, "postfix", "p", "", "postfix to resolve for; the configured chain is used when empty")
	pf.StringArrayVar(&flags.priorities, "priority", nil, "postfix priority, strongest first (repeatable)")
	pf.StringVar(&flags.defaultFix, "default", "", "default postfix placed at the head of the chain")
	pf.StringArrayVar(&flags.locales, "locale", nil, "derive priorities from locale tags (repeatable)")
	pf.BoolVar(&flags.all, "all", false, "use every loaded postfix as a priority")
	pf.BoolVar(&flags.noCache, "no-cache", false, "disable the lookup cache")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log engine activity to stderr")
	_ = rootCmd.MarkPersistentFlagRequired("template")

	rootCmd.AddCommand(
		newGetCommand(flags),
		newListCommand(flags),
		newTraceCommand(flags),
		newDescribeCommand(flags),
		newEvalCommand(flags),
		newPostfixesCommand(flags),
	)

	return rootCmd
}

func (f *rootFlags) separatorRune() (rune, error) {
	if utf8.RuneCountInString(f.separator) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", f.separator)
	}
	r, _ := utf8.DecodeRuneInString(f.separator)
	return r, nil
}

// open loads the template's sources into a configured engine.
func (f *rootFlags) open(cmd *cobra.Command) (*postfix.Engine, error) {
	sep, err := f.separatorRune()
	if err != nil {
		return nil, err
	}
	a, err := f.adapter(sep)
	if err != nil {
		return nil, err
	}

	opts := []postfix.Option{
		postfix.WithName(f.template),
		postfix.WithCache(!f.noCache),
		postfix.WithDefaultPostfix(f.defaultFix),
		postfix.WithPriorities(f.priorities...),
	}
	if f.verbose {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, postfix.WithLogger(postfix.NewSlogAdapter(slog.New(handler))))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := postfix.LoadDir(ctx, f.template, sep, a, opts...)
	if err != nil {
		return nil, err
	}

	if len(f.locales) > 0 {
		if err := e.SetLocalePriorities(f.locales...); err != nil {
			return nil, err
		}
	}
	if f.all {
		if err := e.UseAllFoundPostfixes(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// adapter picks the adapter named by --format or, failing that, the one
// handling the first file of the template's family.
func (f *rootFlags) adapter(sep rune) (adapter.Adapter, error) {
	if f.format != "" {
		return adapter.ByName(f.format)
	}

	t := source.ParseTemplate(f.template, sep)
	entries, err := os.ReadDir(t.Dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", t.Dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		_, ext, ok := t.Match(entry.Name())
		if !ok {
			continue
		}
		if a, ok := adapter.ForExtension(ext); ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no sources matching %q; pass --format to choose an adapter", f.template)
}
