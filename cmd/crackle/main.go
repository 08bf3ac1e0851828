// Command crackle is the disk-image builder's command-line front end:
// it runs a CSV insertion script against a fresh nibble or block image
// and writes the result. Grounded on the teacher's (goat) cobra
// command-tree idiom in main.go.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamgreen/snapncrackle/internal/blockimage"
	"github.com/adamgreen/snapncrackle/internal/diskscript"
	"github.com/adamgreen/snapncrackle/internal/nibble"
)

// Format selects which disk geometry the script is driving.
type Format string

// FormatHDV35 is this module's canonical name for the 3.5" block image
// format; the original source's duplicate FORMAT_2MG_3_5 enumerator is
// not exposed, per SPEC_FULL.md's Open-Question resolution.
const (
	FormatNib525 Format = "nib_5.25"
	FormatHDV35  Format = "hdv_3.5"
)

// blockImageBlocks is the fixed 2MG/HDV image size: 1600 blocks of 512
// bytes (819,200 bytes total), per spec.md §6.
const blockImageBlocks = 1600

var command = &cobra.Command{
	Use:  "crackle --format {nib_5.25|hdv_3.5} scriptFile outFile",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.PersistentFlags().GetString("format")
		return runCrackle(cmd.Context(), Format(format), args[0], args[1])
	},
}

func init() {
	command.PersistentFlags().String("format", string(FormatNib525), "output image format: nib_5.25 or hdv_3.5")
}

// runCrackle builds an image of the requested format by running
// scriptFile against it, then writes the result to outFile. The
// top-level context.Context boundary per spec.md §5; the script engine
// itself performs no blocking I/O beyond the plain file reads the
// original also did synchronously.
func runCrackle(ctx context.Context, format Format, scriptFile, outFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var target diskscript.Target
	var bytesFn func() []byte

	switch format {
	case FormatNib525:
		img := nibble.NewImage()
		target = img
		bytesFn = img.Bytes
	case FormatHDV35:
		img := blockimage.New(blockImageBlocks)
		target = img
		bytesFn = img.Bytes
	default:
		return fmt.Errorf("unrecognized image format '%s'", format)
	}

	engine := diskscript.New(target)
	errCount := 0
	runErr := engine.RunFile(scriptFile, func(line int, err error) {
		errCount++
		fmt.Fprintf(os.Stderr, "%s:%d: error: %s\n", scriptFile, line, err)
	})
	if runErr != nil {
		return fmt.Errorf("unable to read script '%s': %w", scriptFile, runErr)
	}
	if errCount > 0 {
		return fmt.Errorf("disk image build failed with %d error(s)", errCount)
	}

	if err := os.WriteFile(outFile, bytesFn(), 0644); err != nil {
		return fmt.Errorf("unable to write image '%s': %w", outFile, err)
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
