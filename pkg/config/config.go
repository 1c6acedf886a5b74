package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// OpenAI設定（Embeddings + LLM）
	OpenAI OpenAIConfig

	// HTTPサーバ設定
	HTTP HTTPConfig

	// ドキュメント取り込み設定
	Ingest IngestConfig

	// 質問応答設定
	Ask AskConfig
}

// OpenAIConfig はOpenAI API設定（Embeddings + LLM）
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	LLMModel           string
	Temperature        float64
}

// HTTPConfig はHTTPサーバ設定
type HTTPConfig struct {
	Port int
}

// IngestConfig はドキュメント取り込み設定
type IngestConfig struct {
	ChunkSize      int   // チャンクの目標文字数
	ChunkOverlap   int   // 隣接チャンクのオーバーラップ文字数
	MaxChunkTokens int   // Embeddingモデルの1入力あたりトークン上限
	MaxUploadBytes int64 // アップロードサイズ上限
}

// AskConfig は質問応答設定
type AskConfig struct {
	TopK int // 検索で取得するチャンク数
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			LLMModel:           getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
			Temperature:        getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		},
		HTTP: HTTPConfig{
			Port: getEnvAsInt("HTTP_PORT", 3000),
		},
		Ingest: IngestConfig{
			ChunkSize:      getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:   getEnvAsInt("CHUNK_OVERLAP", 200),
			MaxChunkTokens: getEnvAsInt("EMBEDDING_MAX_INPUT_TOKENS", 8192),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 10<<20)),
		},
		Ask: AskConfig{
			TopK: getEnvAsInt("RETRIEVE_TOP_K", 4),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate は設定値の整合性を検証します
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.Ingest.ChunkOverlap)
	}
	if c.Ingest.MaxChunkTokens <= 0 {
		return fmt.Errorf("EMBEDDING_MAX_INPUT_TOKENS must be positive, got %d", c.Ingest.MaxChunkTokens)
	}
	if c.Ask.TopK <= 0 {
		return fmt.Errorf("RETRIEVE_TOP_K must be positive, got %d", c.Ask.TopK)
	}
	return nil
}

// getEnv は環境変数を取得し、未設定の場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
