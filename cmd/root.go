package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/ai"
	"github.com/decisionhq/recruit-ranker/internal/ai/gemini"
	"github.com/decisionhq/recruit-ranker/internal/ai/openai"
	"github.com/decisionhq/recruit-ranker/internal/logger"
	"github.com/decisionhq/recruit-ranker/internal/matching"
	"github.com/decisionhq/recruit-ranker/internal/secrets"
	"github.com/decisionhq/recruit-ranker/internal/store"
	"github.com/decisionhq/recruit-ranker/internal/workflow"
)

const (
	app = "recruit-ranker"

	defaultDataDir     = "data"
	defaultDataBaseURL = "https://github.com/decisionhq/recruit-ranker-data/releases/latest/download"
	defaultTopN        = 10
)

type Config struct {
	Data      *DataConfig      `mapstructure:"data"`
	Matching  *MatchingConfig  `mapstructure:"matching"`
	AI        *AIConfig        `mapstructure:"ai"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Server    *ServerConfig    `mapstructure:"server"`
}

type DataConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base-url"`
	// TimeoutSeconds bounds each store download.
	TimeoutSeconds int `mapstructure:"timeout-seconds"`
}

type MatchingConfig struct {
	SuccessKeywords []string `mapstructure:"success-keywords"`
	TopN            int      `mapstructure:"top-n"`
	MaxFeatures     int      `mapstructure:"max-features"`
	FitOnFull       bool     `mapstructure:"fit-on-full"`
	ModelFile       string   `mapstructure:"model-file"`
	Seed            int64    `mapstructure:"seed"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type OpenAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type InterviewConfig struct {
	MaxQuestions int `mapstructure:"max-questions"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruit-ranker ranks job candidates against requisitions using historical hiring outcomes",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.openai.api-key-file", "OPENAI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("data.base-url", "RECRUIT_RANKER_DATA_URL"); err != nil {
		log.Fatalf("binding RECRUIT_RANKER_DATA_URL environment variable: %v", err)
	}

	viper.SetDefault("matching.fit-on-full", true)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruit-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional: every key has a default or an
	// environment binding.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Data == nil {
		config.Data = &DataConfig{}
	}
	if config.Data.Dir == "" {
		config.Data.Dir = defaultDataDir
	}
	if config.Data.BaseURL == "" {
		config.Data.BaseURL = defaultDataBaseURL
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{FitOnFull: viper.GetBool("matching.fit-on-full")}
	}
	if config.Matching.TopN <= 0 {
		config.Matching.TopN = defaultTopN
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func newService(ctx context.Context, config *Config, log *zap.Logger) (*workflow.Service, error) {
	timeout := 60 * time.Second
	if config.Data.TimeoutSeconds > 0 {
		timeout = time.Duration(config.Data.TimeoutSeconds) * time.Second
	}

	downloader := &store.Downloader{
		BaseURL: config.Data.BaseURL,
		Dir:     config.Data.Dir,
		Timeout: timeout,
		Logger:  log,
	}

	var extractor *ai.Extractor
	if config.AI != nil && config.AI.Enabled {
		generator, err := newGenerator(ctx, config.AI, log)
		if err != nil {
			return nil, err
		}
		extractor = ai.NewExtractor(generator, log, config.AI.MaxLogLength)
	}

	service := workflow.New(workflow.Config{
		Downloader:      downloader,
		SuccessKeywords: config.Matching.SuccessKeywords,
		Matching: matching.Options{
			MaxFeatures: config.Matching.MaxFeatures,
			Seed:        config.Matching.Seed,
			FitOnFull:   config.Matching.FitOnFull,
		},
		TopN:      config.Matching.TopN,
		Extractor: extractor,
		Logger:    log,
	})

	if err := service.Load(ctx); err != nil {
		return nil, err
	}

	if config.Matching.ModelFile != "" {
		if err := service.LoadModel(config.Matching.ModelFile); err != nil {
			log.Warn("model artifact not loaded, will fit from training data",
				zap.String("path", config.Matching.ModelFile),
				zap.Error(err),
			)
		}
	}

	return service, nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", "gemini":
		geminiCfg := cfg.Gemini
		if geminiCfg == nil {
			geminiCfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: geminiCfg.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithCommonFields(log, "gemini", geminiCfg.Model)
		return gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, genLogger)
	case "openai":
		openaiCfg := cfg.OpenAI
		if openaiCfg == nil {
			openaiCfg = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: openaiCfg.APIKeyFile,
			Env:  "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}

		return openai.NewGenerator(apiKey, openaiCfg.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
