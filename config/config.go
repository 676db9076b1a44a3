package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:",squash"`
	Feishu  FeishuConfig  `mapstructure:",squash"`
	LLM     LLMConfig     `mapstructure:",squash"`
	Backend BackendConfig `mapstructure:",squash"`
	Account AccountConfig `mapstructure:",squash"`
}

type ServerConfig struct {
	Port      string `mapstructure:"PORT"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // "console" or "json"
}

type FeishuConfig struct {
	AppID             string `mapstructure:"FEISHU_APP_ID"`
	AppSecret         string `mapstructure:"FEISHU_APP_SECRET"`
	EncryptKey        string `mapstructure:"FEISHU_ENCRYPT_KEY"`
	VerificationToken string `mapstructure:"FEISHU_VERIFICATION_TOKEN"`
}

// Enabled reports whether the Feishu channel should be started.
func (c FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != ""
}

type LLMConfig struct {
	APIKey    string `mapstructure:"LLM_API_KEY"`
	APIURL    string `mapstructure:"LLM_API_URL"`
	ModelName string `mapstructure:"LLM_MODEL_NAME"` // e.g. "gpt-4-turbo", "gpt-4o"

	STTModel    string `mapstructure:"STT_MODEL"`
	STTLanguage string `mapstructure:"STT_LANGUAGE"`
	TTSModel    string `mapstructure:"TTS_MODEL"`
	TTSVoice    string `mapstructure:"TTS_VOICE"`
	TTSFormat   string `mapstructure:"TTS_FORMAT"`

	TextPersona  string `mapstructure:"TEXT_PERSONA"`
	VoicePersona string `mapstructure:"VOICE_PERSONA"`
}

type BackendConfig struct {
	Driver         string `mapstructure:"BACKEND_DRIVER"` // "postgres" or "postgrest"
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	SupabaseURL    string `mapstructure:"SUPABASE_URL"`
	ServiceRoleKey string `mapstructure:"SUPABASE_SERVICE_ROLE_KEY"`
}

type AccountConfig struct {
	DefaultAccountID string `mapstructure:"DEFAULT_ACCOUNT_ID"`
}

const (
	DefaultTextPersona  = "You are a helpful personal finance assistant. Answer directly and base every figure on the data you are given."
	DefaultVoicePersona = "You are a personal finance voice assistant. Keep answers brief, natural and easy to say out loud. Avoid lists, markdown and symbols."
)

var defaults = map[string]string{
	"PORT":                      "8080",
	"LOG_FORMAT":                "console",
	"FEISHU_APP_ID":             "",
	"FEISHU_APP_SECRET":         "",
	"FEISHU_ENCRYPT_KEY":        "",
	"FEISHU_VERIFICATION_TOKEN": "",
	"LLM_API_KEY":               "",
	"LLM_API_URL":               "https://api.openai.com/v1",
	"LLM_MODEL_NAME":            "gpt-4-turbo",
	"STT_MODEL":                 "whisper-1",
	"STT_LANGUAGE":              "es",
	"TTS_MODEL":                 "tts-1",
	"TTS_VOICE":                 "alloy",
	"TTS_FORMAT":                "mp3",
	"TEXT_PERSONA":              DefaultTextPersona,
	"VOICE_PERSONA":             DefaultVoicePersona,
	"BACKEND_DRIVER":            "postgrest",
	"DATABASE_URL":              "",
	"SUPABASE_URL":              "",
	"SUPABASE_SERVICE_ROLE_KEY": "",
	"DEFAULT_ACCOUNT_ID":        "1",
}

var AppConfig *Config

// Load reads the dotenv file at path (if present) and overlays the process
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	// Every key needs a default so AutomaticEnv values reach Unmarshal.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func Init() {
	cfg, err := Load(".env")
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Printf("Warning: LLM_API_KEY is empty, model calls will fail")
	}
	AppConfig = cfg
}
