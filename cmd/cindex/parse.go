package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gianged/cindex/internal/parser"
	"github.com/gianged/cindex/pkg/types"
)

var flagParseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse one source file and print its declaration tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := parser.New()
		result, err := p.ParseFile(args[0])
		if err != nil {
			return err
		}

		if flagParseJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		renderParseResult(cmd, result)
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&flagParseJSON, "json", false, "emit the parse result as JSON")
}

func renderParseResult(cmd *cobra.Command, result *types.ParseResult) {
	out := cmd.OutOrStdout()

	for _, inc := range result.Includes {
		if inc.System {
			fmt.Fprintf(out, "%s <%s>\n", styleKind.Render("include"), inc.Path)
		} else {
			fmt.Fprintf(out, "%s %q\n", styleKind.Render("include"), inc.Path)
		}
	}
	if len(result.Includes) > 0 {
		fmt.Fprintln(out)
	}

	for _, sym := range result.Root.Symbols {
		renderSymbol(cmd, sym, 0)
	}

	for _, perr := range result.Errors {
		fmt.Fprintf(out, "%s %s:%d:%d %s\n",
			styleError.Render("anomaly"), perr.File, perr.Line, perr.Column, perr.Message)
	}
}

func renderSymbol(cmd *cobra.Command, sym *types.Symbol, depth int) {
	out := cmd.OutOrStdout()
	indent := strings.Repeat("  ", depth)

	line := indent + styleKind.Render(string(sym.Kind)) + " " + styleName.Render(sym.Name)
	if sym.Signature != "" {
		line += styleSignature.Render(sym.Signature)
	}
	if sym.Visibility != "" && sym.Visibility != types.VisibilityUnspecified {
		line += " " + styleVisibility.Render("["+string(sym.Visibility)+"]")
	}
	if sym.DeclarationOnly {
		line += " " + styleLocation.Render("(declaration)")
	}
	line += " " + styleLocation.Render(fmt.Sprintf("%d:%d", sym.Span.Start.Line, sym.Span.Start.Column))
	fmt.Fprintln(out, line)

	if sym.Doc != "" {
		firstLine := strings.SplitN(sym.Doc, "\n", 2)[0]
		fmt.Fprintln(out, indent+"  "+styleDoc.Render("// "+firstLine))
	}

	for _, child := range sym.Children {
		renderSymbol(cmd, child, depth+1)
	}
}
