package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Interview InterviewConfig `mapstructure:"interview"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type TelegramConfig struct {
	Token       string        `mapstructure:"bot_token"`
	APIURL      string        `mapstructure:"api_url"`
	PollTimeout int           `mapstructure:"poll_timeout"` // секунды long polling
	RateLimit   int           `mapstructure:"rate_limit"`   // сообщений в минуту на пользователя
	Debug       bool          `mapstructure:"debug"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	PublicURL       string        `mapstructure:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"` // запросов в минуту на клиента
}

type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // file или firestore
	Dir       string `mapstructure:"dir"`
	ProjectID string `mapstructure:"project_id"`
}

type InterviewConfig struct {
	ContentFile   string        `mapstructure:"content_file"`
	QuestionMode  string        `mapstructure:"question_mode"` // manual или llm
	IntroDelay    time.Duration `mapstructure:"intro_delay"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

const (
	StorageFile      = "file"
	StorageFirestore = "firestore"

	QuestionModeManual = "manual"
	QuestionModeLLM    = "llm"
)

// LoadAppConfig читает настройки из значений по умолчанию, необязательного
// YAML файла и переменных окружения (OPENAI_API_KEY, SERVER_PORT,
// TELEGRAM_BOT_TOKEN, STORAGE_BACKEND и т.д.).
func LoadAppConfig(configFile string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла %s: %w", configFile, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 4000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.timeout", 60*time.Second)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("telegram.rate_limit", 20)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.session_ttl", 24*time.Hour)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 60)

	v.SetDefault("storage.backend", StorageFile)
	v.SetDefault("storage.dir", "results")
	v.SetDefault("storage.project_id", "")

	v.SetDefault("interview.content_file", "")
	v.SetDefault("interview.question_mode", QuestionModeManual)
	v.SetDefault("interview.intro_delay", time.Second)
	v.SetDefault("interview.redirect_delay", 4*time.Second)
	v.SetDefault("interview.session_ttl", 2*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate проверяет согласованность настроек
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT должен быть положительным")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("SERVER_RATE_LIMIT не может быть отрицательным")
	}

	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("STORAGE_DIR обязателен для файлового хранилища")
		}
	case StorageFirestore:
		if c.Storage.ProjectID == "" {
			return fmt.Errorf("STORAGE_PROJECT_ID обязателен для firestore")
		}
	default:
		return fmt.Errorf("неизвестное хранилище %q", c.Storage.Backend)
	}

	switch c.Interview.QuestionMode {
	case QuestionModeManual:
	case QuestionModeLLM:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("режим вопросов llm требует OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("неизвестный режим вопросов %q", c.Interview.QuestionMode)
	}

	if c.Interview.IntroDelay < 0 || c.Interview.RedirectDelay < 0 {
		return fmt.Errorf("задержки интервью не могут быть отрицательными")
	}

	return nil
}
