// Command snap is the assembler's command-line front end: it reads a
// 6502/65C02/65816 source file, assembles it, and writes
// out every queued SAV/RW18SAV object file plus an optional list file.
// Grounded on the teacher's (goat) cobra command-tree idiom in main.go.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamgreen/snapncrackle/internal/asm"
	"github.com/adamgreen/snapncrackle/internal/diag"
	"github.com/adamgreen/snapncrackle/internal/listing"
	"github.com/adamgreen/snapncrackle/internal/system"
)

var command = &cobra.Command{
	Use:  "snap sourceFile",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listFile, _ := cmd.PersistentFlags().GetString("list")
		putDirs, _ := cmd.PersistentFlags().GetString("putdirs")
		outDir, _ := cmd.PersistentFlags().GetString("outdir")
		return runSnap(cmd.Context(), args[0], listFile, putDirs, outDir)
	},
}

func init() {
	command.PersistentFlags().String("list", "", "write a list file to this path")
	command.PersistentFlags().String("putdirs", "", "semicolon-separated PUT include search path")
	command.PersistentFlags().String("outdir", "", "directory to write object files into")
}

// runSnap assembles sourceFile and drains its queued object files, the
// assembler's top-level entry point (spec.md §5's context.Context
// boundary): the line-by-line assembly loop inside asm.AssembleString
// has no blocking I/O of its own.
func runSnap(ctx context.Context, sourceFile, listFile, putDirs, outDir string) error {
	sys := system.New()

	text, err := sys.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("unable to open file '%s': %w", sourceFile, err)
	}

	diagLog := diag.New(os.Stderr)
	m := asm.New(diagLog, sys)
	if putDirs != "" {
		m.SetPutSearchPath(strings.Split(putDirs, ";"))
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	m.AssembleString(filepath.Base(sourceFile), text)

	if listFile != "" {
		f, err := os.Create(listFile)
		if err != nil {
			return fmt.Errorf("unable to create list file '%s': %w", listFile, err)
		}
		defer f.Close()
		listing.Write(f, m.Lines())
	}

	if m.ErrorCount() > 0 {
		return fmt.Errorf("assembly failed with %d error(s)", m.ErrorCount())
	}

	for _, q := range m.ObjectQueue() {
		path := q.Filename
		if outDir != "" {
			path = filepath.Join(outDir, filepath.Base(q.Filename))
		}
		if err := os.WriteFile(path, m.EncodeQueuedWrite(q), 0644); err != nil {
			return fmt.Errorf("unable to write object file '%s': %w", path, err)
		}
	}
	return nil
}

func main() {
	command.SetContext(context.Background())
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
