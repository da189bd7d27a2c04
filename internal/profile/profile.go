package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where sweax stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the server
	Version string
	// Secret signs session tokens
	Secret string

	// Timezone is the IANA zone all date/time answers are computed in.
	Timezone string

	// AI configuration
	AIBaseURL        string // SWEAX_AI_BASE_URL (default: http://localhost:11434/v1)
	AIAPIKey         string // SWEAX_AI_API_KEY (Ollama accepts any value)
	AIChatModel      string // SWEAX_AI_CHAT_MODEL (default: qwen2.5:7b-instruct)
	AIReasoningModel string // SWEAX_AI_REASONING_MODEL (default: deepseek-r1:7b)
	AIEmbeddingModel string // SWEAX_AI_EMBEDDING_MODEL (default: nomic-embed-text)

	// Knowledge configuration
	WikiPrimaryLang  string // SWEAX_WIKI_PRIMARY_LANG (default: tr)
	WikiFallbackLang string // SWEAX_WIKI_FALLBACK_LANG (default: en)

	// Translation configuration
	TranslateBaseURL string // SWEAX_TRANSLATE_BASE_URL
	TranslateAPIKey  string // SWEAX_TRANSLATE_API_KEY (empty disables translation)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/sweax"
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("sweax_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.Timezone == "" {
		p.Timezone = "Europe/Istanbul"
	}
	if p.AIBaseURL == "" {
		p.AIBaseURL = "http://localhost:11434/v1"
	}
	if p.AIChatModel == "" {
		p.AIChatModel = "qwen2.5:7b-instruct"
	}
	if p.AIReasoningModel == "" {
		p.AIReasoningModel = "deepseek-r1:7b"
	}
	if p.AIEmbeddingModel == "" {
		p.AIEmbeddingModel = "nomic-embed-text"
	}
	if p.WikiPrimaryLang == "" {
		p.WikiPrimaryLang = "tr"
	}
	if p.WikiFallbackLang == "" {
		p.WikiFallbackLang = "en"
	}

	return nil
}
