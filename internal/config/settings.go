package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration. Zero values fall back to the constants above.
type Settings struct {
	Server    ServerSettings    `yaml:"server"`
	Index     IndexSettings     `yaml:"index"`
	Chunking  ChunkingSettings  `yaml:"chunking"`
	Embedding EmbeddingSettings `yaml:"embedding"`
	LLM       LLMSettings       `yaml:"llm"`
	Redis     RedisSettings     `yaml:"redis"`
	Qdrant    QdrantSettings    `yaml:"qdrant"`
}

type ServerSettings struct {
	ListenAddr  string `yaml:"listen_addr"`
	AuthToken   string `yaml:"auth_token"`
	RateLimit   bool   `yaml:"rate_limit"`
	UploadDir   string `yaml:"upload_dir"`
	Concurrency int    `yaml:"ingest_concurrency"`
}

type IndexSettings struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
}

type ChunkingSettings struct {
	SizeWords    int `yaml:"size_words"`
	OverlapWords int `yaml:"overlap_words"`
}

// EmbeddingSettings selects the embedding provider: "hash", "google" or "openai".
type EmbeddingSettings struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url"`
}

// LLMSettings selects the completion provider: "", "none", "gemini" or "openai".
type LLMSettings struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"-"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	Enabled  bool   `yaml:"enabled"`
}

type QdrantSettings struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	APIKey  string `yaml:"-"`
	Enabled bool   `yaml:"enabled"`
}

var ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

// Load reads an optional YAML file, then .env and the environment. Missing files are not errors.
func Load(path string) (*Settings, error) {
	s := &Settings{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	//.env is optional, real environment wins
	_ = godotenv.Load()
	applyEnv(s)
	applyDefaults(s)

	if err := ValidateChunking(s.Chunking.SizeWords, s.Chunking.OverlapWords); err != nil {
		return nil, err
	}
	return s, nil
}

// Defaults returns settings populated only with defaults, ignoring files and environment.
func Defaults() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// ValidateChunking rejects window configurations that would only produce near-duplicate chunks.
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d", ErrInvalidChunking, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunking, size, overlap)
	}
	return nil
}

func applyEnv(s *Settings) {
	setString(&s.Server.ListenAddr, "DOCRAG_LISTEN_ADDR")
	setString(&s.Server.AuthToken, "DOCRAG_AUTH_TOKEN")
	setBool(&s.Server.RateLimit, "DOCRAG_RATE_LIMIT")
	setString(&s.Server.UploadDir, "DOCRAG_UPLOAD_DIR")
	setInt(&s.Server.Concurrency, "DOCRAG_INGEST_CONCURRENCY")

	setString(&s.Index.Dir, "DOCRAG_INDEX_DIR")
	setString(&s.Index.Name, "DOCRAG_INDEX_NAME")

	setInt(&s.Chunking.SizeWords, "DOCRAG_CHUNK_SIZE")
	setInt(&s.Chunking.OverlapWords, "DOCRAG_CHUNK_OVERLAP")

	setString(&s.Embedding.Provider, "DOCRAG_EMBEDDING_PROVIDER")
	setString(&s.Embedding.Model, "DOCRAG_EMBEDDING_MODEL")
	setInt(&s.Embedding.Dimension, "DOCRAG_EMBEDDING_DIMENSION")
	setString(&s.Embedding.BaseURL, "DOCRAG_EMBEDDING_BASE_URL")

	setString(&s.LLM.Provider, "DOCRAG_LLM_PROVIDER")
	setString(&s.LLM.Model, "DOCRAG_LLM_MODEL")
	setString(&s.LLM.BaseURL, "DOCRAG_LLM_BASE_URL")
	if v := os.Getenv("DOCRAG_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.LLM.Timeout = d
		}
	}

	switch s.Embedding.Provider {
	case "google":
		setString(&s.Embedding.APIKey, "GOOGLE_API_KEY")
	case "openai":
		setString(&s.Embedding.APIKey, "OPENAI_API_KEY")
	}
	switch s.LLM.Provider {
	case "gemini":
		setString(&s.LLM.APIKey, "GOOGLE_API_KEY")
	case "openai":
		setString(&s.LLM.APIKey, "OPENAI_API_KEY")
	}

	setString(&s.Redis.Addr, "REDIS_ADDR")
	setString(&s.Redis.Password, "REDIS_PASSWORD")
	setBool(&s.Redis.Enabled, "DOCRAG_REDIS_ENABLED")

	setString(&s.Qdrant.Host, "QDRANT_HOST")
	setInt(&s.Qdrant.Port, "QDRANT_PORT")
	setString(&s.Qdrant.APIKey, "QDRANT_API_KEY")
	setBool(&s.Qdrant.Enabled, "DOCRAG_ANSWER_CACHE")
}

func applyDefaults(s *Settings) {
	if s.Server.ListenAddr == "" {
		s.Server.ListenAddr = ServerListenAddr
	}
	if s.Server.UploadDir == "" {
		s.Server.UploadDir = UploadDirName
	}
	if s.Server.Concurrency <= 0 {
		s.Server.Concurrency = IngestConcurrency
	}
	if s.Index.Dir == "" {
		s.Index.Dir = DefaultIndexDir
	}
	if s.Index.Name == "" {
		s.Index.Name = DefaultIndexName
	}
	if s.Chunking.SizeWords == 0 {
		s.Chunking.SizeWords = DefaultChunkSizeWords
		if s.Chunking.OverlapWords == 0 {
			s.Chunking.OverlapWords = DefaultChunkOverlapWords
		}
	}
	if s.Embedding.Provider == "" {
		s.Embedding.Provider = "hash"
	}
	if s.Embedding.Model == "" {
		switch s.Embedding.Provider {
		case "google":
			s.Embedding.Model = GoogleEmbeddingModel
		case "openai":
			s.Embedding.Model = OpenAIEmbeddingModel
		default:
			s.Embedding.Model = DefaultEmbeddingModel
		}
	}
	if s.Embedding.Dimension <= 0 {
		s.Embedding.Dimension = DefaultDimension
	}
	if s.LLM.Model == "" {
		switch s.LLM.Provider {
		case "gemini":
			s.LLM.Model = GeminiModelName
		case "openai":
			s.LLM.Model = OpenAIModelName
		}
	}
	if s.LLM.Timeout <= 0 {
		s.LLM.Timeout = LLMTimeout
	}
	if s.Redis.Addr == "" {
		s.Redis.Addr = RedisAddr
	}
	if s.Qdrant.Port == 0 {
		s.Qdrant.Port = QdrantGrpcPort
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
