package scanning

import (
	"fmt"
	"os"
)

// Engine names accepted by New
const (
	EngineTesseract = "tesseract"
	EngineGemini    = "gemini"
	EngineOllama    = "ollama"
)

// Config selects and configures an OCR engine
type Config struct {
	Engine             string
	TesseractLanguages []string
	GeminiKey          string // falls back to GEMINI_API_KEY
	GeminiModel        string
	OllamaURL          string
	OllamaModel        string
}

// New builds the Scanner named by cfg.Engine
func New(cfg Config) (Scanner, error) {
	switch cfg.Engine {
	case EngineTesseract, "":
		return NewTesseract(cfg.TesseractLanguages...), nil
	case EngineGemini:
		key := cfg.GeminiKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		return NewGemini(key, cfg.GeminiModel)
	case EngineOllama:
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown scanner %q: want %s, %s or %s", cfg.Engine, EngineTesseract, EngineGemini, EngineOllama)
	}
}
