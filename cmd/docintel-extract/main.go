package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-docintel/internal/config"
	"github.com/a3tai/mcp-docintel/internal/docintel"
	"github.com/a3tai/mcp-docintel/internal/intelligence"
	"github.com/a3tai/mcp-docintel/internal/source"
)

// stdinName selects the plain text strategy for piped input
const stdinName = "stdin.txt"

// Output is everything one run produces
type Output struct {
	File     string                        `json:"file"`
	Document *source.Document              `json:"document"`
	Result   intelligence.ExtractionResult `json:"result"`
	Form     *docintel.FormCheckResult     `json:"form,omitempty"`
}

type options struct {
	labels        []string
	scheme        string
	template      string
	format        string
	tesseract     string
	tesseractLang string
	maxFileSize   int64
	verbose       bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options

	fs := pflag.NewFlagSet("docintel-extract", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringArrayVarP(&opts.labels, "label", "l", nil, "Label to look up; repeatable")
	fs.StringVar(&opts.scheme, "form", "", "Map the document onto the form for this scheme (e.g. PAN)")
	fs.StringVar(&opts.template, "template", "", "Fillable PDF to check the mapped form against")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.StringVar(&opts.tesseract, "tesseract", config.DefaultTesseract, "Tesseract binary")
	fs.StringVar(&opts.tesseractLang, "tesseract-lang", config.DefaultTesseractLang, "Tesseract language")
	fs.Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Maximum input size in bytes")
	fs.BoolVarP(&opts.verbose, "verbose", "V", false, "Log progress to stderr")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: exactly one document path (or - for stdin) is required\n\n")
		printUsage(stderr, fs)
		return 2
	}
	if opts.format != "text" && opts.format != "json" {
		fmt.Fprintf(stderr, "Error: unsupported output format: %s\n", opts.format)
		return 2
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	out, err := extract(ctx, fs.Arg(0), stdin, opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.format == "json" {
		err = outputJSON(stdout, out)
	} else {
		err = outputText(stdout, out)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

func extract(ctx context.Context, path string, stdin io.Reader, opts options, logger *slog.Logger) (*Output, error) {
	src, err := source.NewService(source.Config{
		MaxFileSize:   opts.maxFileSize,
		TesseractPath: opts.tesseract,
		TesseractLang: opts.tesseractLang,
	}, source.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	svc, err := docintel.NewService(intelligence.NewEngine(), src, docintel.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var read *docintel.ReadFileResult
	if path == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, opts.maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		read, err = svc.ReadBytes(ctx, stdinName, data, opts.labels)
		if err != nil {
			return nil, err
		}
	} else {
		read, err = svc.ReadFile(ctx, docintel.ReadFileRequest{Path: path, Labels: opts.labels})
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("document read",
		"file", read.Document.Name,
		"method", read.Document.Method,
		"type", read.Result.DocumentType,
	)

	out := &Output{File: path, Document: read.Document, Result: read.Result}

	if opts.scheme != "" || opts.template != "" {
		form, err := svc.CheckForm(docintel.FormCheckRequest{
			FormMapRequest: docintel.FormMapRequest{Text: read.Document.Text, Scheme: opts.scheme},
			Template:       opts.template,
		})
		if err != nil {
			return nil, err
		}
		out.Form = form
	}

	return out, nil
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "docintel-extract - classify a scanned document and extract its fields")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  docintel-extract [OPTIONS] <file|->")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  docintel-extract aadhaar.png")
	fmt.Fprintln(w, "  docintel-extract --label \"Roll No\" --label \"School Name\" marksheet.pdf")
	fmt.Fprintln(w, "  pdftotext scan.pdf - | docintel-extract --form PAN --format json -")
}

func outputJSON(w io.Writer, out *Output) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func outputText(w io.Writer, out *Output) error {
	var b strings.Builder

	doc := out.Document
	fmt.Fprintf(&b, "File: %s (%s, %d page(s))\n", out.File, doc.Method, doc.Pages)
	for _, warning := range doc.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warning)
	}
	if doc.Empty() {
		fmt.Fprintln(&b, "No text extracted.")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Type: %s (%s confidence)\n", out.Result.DocumentType, out.Result.Confidence)

	if len(out.Result.Fields) > 0 {
		fmt.Fprintln(&b, "\nFields:")
		keys := make([]string, 0, len(out.Result.Fields))
		for k := range out.Result.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %-16s %s\n", k, out.Result.Fields[k])
		}
	}

	if len(out.Result.DynamicFields) > 0 {
		fmt.Fprintln(&b, "\nLabels:")
		for _, f := range out.Result.DynamicFields {
			fmt.Fprintf(&b, "  %-16s %s\n", f.Label, f.ValueOr("(not found)"))
		}
	}

	if form := out.Form; form != nil {
		fmt.Fprintln(&b)
		switch {
		case form.Status == docintel.StatusSkipped:
			fmt.Fprintf(&b, "Form: %s\n", form.Message)
		default:
			fmt.Fprintf(&b, "Form: %s\n", form.Schema)
			for _, kv := range form.Ordered {
				fmt.Fprintf(&b, "  %-16s %s\n", kv[0], kv[1])
			}
			if form.Report != nil {
				fmt.Fprintf(&b, "Status: %s\n", form.Report.Message)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
