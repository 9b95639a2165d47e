package config

import "time"

// Config is the root application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Redis    RedisConfig    `yaml:"redis"`
	Library  LibraryConfig  `yaml:"library"`
	AI       AIConfig       `yaml:"ai"`
	Editor   EditorConfig   `yaml:"editor"`
	Log      LogConfig      `yaml:"log"`
}

// TelegramConfig holds bot credentials and the log channel.
type TelegramConfig struct {
	Token        string   `yaml:"token"          env:"BOT_TOKEN"`
	LogChannelID int64    `yaml:"log_channel_id" env:"LOG_CHANNEL_ID"`
	Debug        bool     `yaml:"debug"          env:"BOT_DEBUG"      env-default:"false"`
	PollTimeout  int      `yaml:"poll_timeout"   env:"BOT_POLL_TIMEOUT" env-default:"60"`
	Admins       []string `yaml:"admins"         env:"ADMIN_USERNAMES"  env-separator:","`
}

// RedisConfig holds the session store connection.
type RedisConfig struct {
	URL        string        `yaml:"url"         env:"REDIS_URL"`
	Password   string        `yaml:"password"    env:"REDIS_PASSWORD"`
	Plaintext  bool          `yaml:"plaintext"   env:"REDIS_PLAINTEXT"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"REDIS_SESSION_TTL" env-default:"720h"`
}

// LibraryConfig holds the lyric library database settings.
type LibraryConfig struct {
	DSN       string `yaml:"dsn"        env:"DATABASE_URL"   env-default:"file:lyricforge.db"`
	AuthToken string `yaml:"auth_token" env:"DATABASE_TOKEN"`
}

// AIConfig holds the chat completion endpoint settings.
type AIConfig struct {
	APIKey      string        `yaml:"api_key"     env:"OPENROUTER_API_KEY"`
	BaseURL     string        `yaml:"base_url"    env:"AI_BASE_URL"    env-default:"https://openrouter.ai/api/v1"`
	Model       string        `yaml:"model"       env:"AI_MODEL"       env-default:"anthropic/claude-3-haiku"`
	MaxTokens   int64         `yaml:"max_tokens"  env:"AI_MAX_TOKENS"  env-default:"500"`
	Temperature float64       `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.8"`
	Retries     uint64        `yaml:"retries"     env:"AI_RETRIES"     env-default:"4"`
	Timeout     time.Duration `yaml:"timeout"     env:"AI_TIMEOUT"     env-default:"60s"`
	AppTitle    string        `yaml:"app_title"   env:"AI_APP_TITLE"   env-default:"Lyric Forge"`
}

// EditorConfig holds editor defaults.
type EditorConfig struct {
	ExportFormat  string `yaml:"export_format"  env:"EDITOR_EXPORT_FORMAT"  env-default:"markdown"`
	TimeSignature string `yaml:"time_signature" env:"EDITOR_TIME_SIGNATURE" env-default:"4/4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Enabled reports whether an API key is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}
