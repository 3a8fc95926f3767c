package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	postfix "github.com/goliatone/go-postfix"
	"github.com/goliatone/go-postfix/value"
)

func newGetCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Resolve a dotted path and print the merged value",
		Long: `Get resolves path along the priority chain. Scalars are printed as text,
objects and arrays as JSON. An empty path prints the whole document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open(cmd)
			if err != nil {
				return err
			}
			path := firstArg(args)

			var (
				v     value.Value
				found bool
			)
			if flags.postfix != "" {
				v, found, err = e.ReadValue(flags.postfix, path)
			} else {
				v, found, err = e.Lookup(path)
			}
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %q", errNotFound, path)
			}
			return printValue(cmd.OutOrStdout(), v)
		},
	}
}

func newListCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list <path>",
		Short: "Resolve an array and print one element per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open(cmd)
			if err != nil {
				return err
			}

			var (
				items []value.Value
				found bool
			)
			if flags.postfix != "" {
				items, found, err = postfix.ReadListFor[value.Value](e, flags.postfix, args[0])
			} else {
				items, found, err = postfix.ReadList[value.Value](e, args[0])
			}
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: no array at %q", errNotFound, args[0])
			}
			for _, item := range items {
				if err := printValue(cmd.OutOrStdout(), item); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newTraceCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <path>",
		Short: "Show which sources contribute to a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open(cmd)
			if err != nil {
				return err
			}
			trace, err := e.Trace(flags.postfix, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:  %s\n", trace.Path)
			fmt.Fprintf(out, "chain: %s\n", labelChain(trace.Chain))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "POSTFIX\tSOURCE\tFOUND\tVALUE")
			for _, layer := range trace.Layers {
				name := layer.Name
				if !layer.Loaded {
					name = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", label(layer.Postfix), name, layer.Found, compactJSON(layer.Value, layer.Found))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if trace.Found {
				fmt.Fprintf(out, "value: %s\n", compactJSON(trace.Value, true))
			}
			return nil
		},
	}
}

func newDescribeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "List every leaf path of the merged document with its type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.open(cmd)
			if err != nil {
				return err
			}
			var fields []postfix.FieldDescriptor
			if flags.postfix != "" {
				fields, err = e.DescribeFor(flags.postfix)
			} else {
				fields, err = e.Describe()
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tTYPE\tSOURCES")
			for _, field := range fields {
				fmt.Fprintf(w, "%s\t%s\t%s\n", field.Path, field.Type, labelChain(field.Sources))
			}
			return w.Flush()
		},
	}
}

func newEvalCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expr expression against the merged document",
		Long: `Eval exposes the merged root document as variables, so top-level keys can be
referenced directly:

  postfix eval --template ./config/app --priority prod 'database.port > 1024'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.open(cmd)
			if err != nil {
				return err
			}
			resp, err := e.EvaluateFor(flags.postfix, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), compactJSON(resp.Value, true))
			return nil
		},
	}
}

func newPostfixesCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "postfixes",
		Short: "List the loaded postfixes and the effective priority chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.open(cmd)
			if err != nil {
				return err
			}
			loaded, err := e.Postfixes()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format: %s (%s)\n", e.Adapter().Format(), e.Capability())
			fmt.Fprintf(out, "loaded: %s\n", labelChain(loaded))
			fmt.Fprintf(out, "chain:  %s\n", labelChain(e.Probe(flags.postfix)))
			return nil
		},
	}
}

func printValue(w io.Writer, v value.Value) error {
	if v.IsScalar() {
		_, err := fmt.Fprintln(w, v.Text())
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func compactJSON(v any, found bool) string {
	if !found {
		return "-"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func label(postfix string) string {
	if postfix == "" {
		return "<default>"
	}
	return postfix
}

func labelChain(chain []string) string {
	labels := make([]string, len(chain))
	for i, postfix := range chain {
		labels[i] = label(postfix)
	}
	return strings.Join(labels, " > ")
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
