// Command msqz encodes and decodes MSQZ images from the command line.
//
// Usage:
//
//	msqz enc [options] <input>        PNG/JPEG/GIF → MSQZ (use "-" for stdin)
//	msqz dec [options] <input.msqz>   MSQZ → PNG (use "-" for stdin, -o - for stdout)
//	msqz info <input.msqz>            Display MSQZ header info
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepteams/modular"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "enc":
		err = runEnc(os.Args[2:])
	case "dec":
		err = runDec(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "msqz: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "msqz: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  msqz enc [options] <input>        Encode PNG/JPEG/GIF to MSQZ
  msqz dec [options] <input.msqz>   Decode MSQZ to PNG
  msqz info <input.msqz>            Display MSQZ header info

Use "-" as input to read from stdin, "-o -" to write to stdout.

Run "msqz <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// --- enc ---

func runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	output := fs.String("o", "", "output file (default: input name with .msqz)")
	workers := fs.Int("j", 0, "worker goroutines (0 = all CPUs)")
	noRCT := fs.Bool("no_rct", false, "skip the reversible color transform")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("enc: expected one input file")
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("enc: decoding input: %w", err)
	}

	opts := &modular.Options{
		Workers:          *workers,
		NoColorTransform: *noRCT,
	}

	outputPath := *output
	if outputPath == "-" {
		return modular.Encode(os.Stdout, img, opts)
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.msqz"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".msqz"
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := modular.Encode(out, img, opts); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("enc: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fi, _ := os.Stat(outputPath)
	fmt.Fprintf(os.Stderr, "Encoded %s → %s (%d bytes)\n", inputPath, outputPath, fi.Size())
	return nil
}

// --- dec ---

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	output := fs.String("o", "", "output file (default: input name with .png)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("dec: expected one input file")
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, err := modular.Decode(in)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	outputPath := *output
	if outputPath == "-" {
		return png.Encode(os.Stdout, img)
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.png"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".png"
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("dec: encoding PNG: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fmt.Fprintf(os.Stderr, "Decoded %s → %s\n", inputPath, outputPath)
	return nil
}

// --- info ---

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info: expected one input file")
	}
	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	feat, err := modular.ReadFeatures(in)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	fmt.Printf("Dimensions: %dx%d\n", feat.Width, feat.Height)
	fmt.Printf("Alpha:      %v\n", feat.HasAlpha)
	fmt.Printf("Squeezes:   %d\n", feat.NumSqueezes)
	return nil
}
