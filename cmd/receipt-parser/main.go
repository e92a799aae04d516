package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-parser/internal/extraction"
	"github.com/zombor/receipt-parser/internal/metrics"
	"github.com/zombor/receipt-parser/internal/receipt"
	"github.com/zombor/receipt-parser/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// the API returns amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	defaults := receipt.DefaultOptions()

	fs := ff.NewFlagSet("receipt-parser")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "receipt-parser.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./uploads", "Upload storage directory path")
		scannerType   = fs.StringLong("scanner", "tesseract", "Scanner type: 'tesseract', 'gemini' or 'ollama'")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract languages, comma separated")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, qwen2-vl)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		maxFileSize   = fs.IntLong("max-file-size", int(defaults.MaxFileSize), "Maximum upload size in bytes")
		allowedTypes  = fs.StringLong("allowed-types", strings.Join(defaults.AllowedTypes, ","), "Accepted file extensions, comma separated")
		maxFiles      = fs.IntLong("max-files", defaults.MaxFiles, "Maximum files per multiple upload")
		cleanup       = fs.BoolLong("cleanup-uploads", "Delete uploads once they have been processed")
		environment   = fs.StringLong("environment", "production", "Environment name; 'development' adds error details to responses")
		nameKeywords  = fs.StringLong("name-keywords", strings.Join(extraction.DefaultMatchers().NameKeywords, ","), "Merchant name keywords, comma separated")
		addressHints  = fs.StringLong("address-hints", "", "Merchant address hints, comma separated")
		phoneHints    = fs.StringLong("phone-hints", "", "Merchant phone hints, comma separated")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn, error")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PARSER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Initializing scanner...", "type", *scannerType)
	scanner, err := scanning.New(scanning.Config{
		Engine:             *scannerType,
		TesseractLanguages: splitList(*tesseractLang),
		GeminiKey:          *geminiKey,
		GeminiModel:        *geminiModel,
		OllamaURL:          *ollamaURL,
		OllamaModel:        *ollamaModel,
	})
	if err != nil {
		slog.Error("Failed to initialize scanner", "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	slog.Info("Initializing storage...")
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	extractor := extraction.New(extraction.Matchers{
		NameKeywords: splitList(*nameKeywords),
		AddressHints: splitList(*addressHints),
		PhoneHints:   splitList(*phoneHints),
	}, logger)

	recorder := metrics.New()

	opts := receipt.Options{
		MaxFileSize:    int64(*maxFileSize),
		AllowedTypes:   splitList(strings.ToLower(*allowedTypes)),
		MaxFiles:       *maxFiles,
		CleanupUploads: *cleanup,
	}
	receiptService := receipt.NewServiceWithDeps(db, scanner, store, extractor, opts, recorder, nil, nil)

	server := receipt.NewServer(receiptService, receipt.ServerConfig{
		BasicAuth: receipt.BasicAuth{
			Username: *authUser,
			Password: *authPass,
		},
		Version:     version,
		Environment: *environment,
		Metrics:     recorder.Handler(),
	})

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "scanner", scanner.Name(), "environment", *environment)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
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
