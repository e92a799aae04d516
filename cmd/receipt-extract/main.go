// Command receipt-extract reads OCR text, or a receipt image, and prints the extracted record.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-parser/internal/export"
	"github.com/zombor/receipt-parser/internal/extraction"
	"github.com/zombor/receipt-parser/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// amounts are printed as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := ff.NewFlagSet("receipt-extract")
	var (
		format       = fs.StringLong("format", "json", "Output format: json, csv or xlsx")
		output       = fs.StringLong("out", "", "Write output to this file instead of stdout")
		image        = fs.BoolLong("image", "Treat the input as an image or PDF and run OCR first")
		scannerType  = fs.StringLong("scanner", "tesseract", "Scanner type for --image: 'tesseract', 'gemini' or 'ollama'")
		langs        = fs.StringLong("tesseract-lang", "eng", "Tesseract languages, comma separated")
		geminiKey    = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel  = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL    = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel  = fs.StringLong("ollama-model", "llava", "Ollama model name")
		filename     = fs.StringLong("filename", "", "Source filename used for the receipt name (defaults to the input name)")
		nameKeywords = fs.StringLong("name-keywords", strings.Join(extraction.DefaultMatchers().NameKeywords, ","), "Merchant name keywords, comma separated")
		addressHints = fs.StringLong("address-hints", "", "Merchant address hints, comma separated")
		phoneHints   = fs.StringLong("phone-hints", "", "Merchant phone hints, comma separated")
		timeout      = fs.DurationLong("timeout", 2*time.Minute, "OCR timeout")
		logLevel     = fs.StringLong("log-level", "warn", "Log level: debug, info, warn, error")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("RECEIPT_PARSER")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version)
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", *logLevel)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	input, source, err := readInput(fs.GetArgs(), stdin)
	if err != nil {
		return err
	}
	if *filename != "" {
		source = *filename
	}

	text := string(input)
	if *image {
		scanner, err := scanning.New(scanning.Config{
			Engine:             *scannerType,
			TesseractLanguages: splitList(*langs),
			GeminiKey:          *geminiKey,
			GeminiModel:        *geminiModel,
			OllamaURL:          *ollamaURL,
			OllamaModel:        *ollamaModel,
		})
		if err != nil {
			return err
		}
		defer scanner.Close()

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		logger.Info("Scanning image", "scanner", scanner.Name(), "source", source)
		text, err = scanner.ScanText(ctx, input, http.DetectContentType(input))
		if err != nil {
			return fmt.Errorf("scanning %s: %w", source, err)
		}
	}

	extractor := extraction.New(extraction.Matchers{
		NameKeywords: splitList(*nameKeywords),
		AddressHints: splitList(*addressHints),
		PhoneHints:   splitList(*phoneHints),
	}, logger)
	record := extractor.Extract(text, source)

	out := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return write(out, *format, record)
}

// readInput reads the single FILE argument, or stdin when it is absent or "-"
func readInput(args []string, stdin io.Reader) ([]byte, string, error) {
	switch {
	case len(args) > 1:
		return nil, "", errors.New("expected at most one input file")
	case len(args) == 0 || args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return data, "", nil
	default:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("reading input: %w", err)
		}
		return data, filepath.Base(args[0]), nil
	}
}

func write(w io.Writer, format string, record *extraction.ReceiptRecord) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	case "csv":
		return export.WriteCSV(w, record)
	case "xlsx":
		data, err := export.XLSX(record)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q: want json, csv or xlsx", format)
	}
}

// splitList turns a comma separated flag into trimmed, non-empty values
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
