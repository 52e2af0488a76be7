package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/minij/mjc/pkg/ast"
	"github.com/minij/mjc/pkg/canon"
	"github.com/minij/mjc/pkg/compileerr"
	"github.com/minij/mjc/pkg/emit"
	"github.com/minij/mjc/pkg/munch"
	"github.com/minij/mjc/pkg/regalloc"
	"github.com/minij/mjc/pkg/trace"
	"github.com/minij/mjc/pkg/translate"
	"github.com/minij/mjc/pkg/tree"
	"github.com/minij/mjc/pkg/version"
	"github.com/minij/mjc/pkg/x86"
)

var (
	outputFile string
	debug      bool
	dumpTree   bool
	dumpCanon  bool
	dumpMunch  bool
	showVer    bool
)

var rootCmd = &cobra.Command{
	Use:   "mjc <program.json>",
	Short: "mjc compiles a typed MiniJava AST to 32-bit x86 assembly",
	Long: `mjc is the backend half of a MiniJava-to-x86 compiler: Tree IR
translation, canonization, tracing, maximal-munch instruction selection,
and Chaitin-style graph-coloring register allocation.

Lexing, parsing, and type checking happen upstream; mjc's input is the
JSON form of the typed AST an external front end would produce (see
pkg/ast.Decode). Output is Intel-syntax assembly meant to be linked
against the runtime's L_halloc/L_println_int/L_read/L_write/L_raise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVer {
			fmt.Println(version.GetFullVersion())
			return nil
		}
		if len(args) == 0 {
			return cmd.Help()
		}
		return compile(args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: input stem with .s)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.Flags().BoolVar(&dumpTree, "dump-tree", false, "dump the translated Tree IR for each function")
	rootCmd.Flags().BoolVar(&dumpCanon, "dump-canon", false, "dump the canonical, traced Tree IR for each function")
	rootCmd.Flags().BoolVar(&dumpMunch, "dump-munch", false, "dump the pre-allocation pseudo-x86 for each function")
	rootCmd.Flags().BoolVarP(&showVer, "version", "v", false, "show version")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError renders a CompileError with its caret-underlined source
// excerpt when available, otherwise the plain wrapped error chain.
func formatError(err error) string {
	var ce *compileerr.CompileError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}

func compile(inputPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	data, readErr := os.ReadFile(inputPath)
	if readErr != nil {
		return errors.Wrapf(readErr, "reading %s", inputPath)
	}

	prog, decodeErr := ast.Decode(data)
	if decodeErr != nil {
		return decodeErr
	}

	symtab, symErr := ast.NewSymbolTable(prog)
	if symErr != nil {
		return compileerr.New("%v", symErr)
	}

	if debug {
		fmt.Fprintf(os.Stderr, "mjc: translating %d class(es)\n", len(prog.Classes))
	}

	translated, transErr := translate.Translate(prog, symtab)
	if transErr != nil {
		return transErr
	}

	var allocated []*x86.Function
	for _, fn := range translated.Functions {
		if dumpTree {
			fmt.Fprint(os.Stderr, tree.Dump(fn))
		}

		canonical := canon.Function(fn)
		traced := trace.Function(canonical)
		if dumpCanon {
			fmt.Fprint(os.Stderr, tree.Dump(traced))
		}

		pseudo := munch.Function(traced)
		if dumpMunch {
			var b strings.Builder
			emit.Function(&b, pseudo)
			fmt.Fprint(os.Stderr, b.String())
		}

		allocated = append(allocated, regalloc.Allocate(pseudo))
	}

	out := outputPath(inputPath)
	asmText := emit.Program(allocated)
	if writeErr := os.WriteFile(out, []byte(asmText), 0644); writeErr != nil {
		return errors.Wrapf(writeErr, "writing %s", out)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "mjc: wrote %s\n", out)
	}
	return nil
}

func outputPath(inputPath string) string {
	if outputFile != "" {
		return outputFile
	}
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + ".s"
}
