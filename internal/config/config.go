package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultConfigPath = "/etc/quotereel/config.ini"
	configPathEnv     = "QUOTEREEL_CONFIG"
)

type Config struct {
	Hostname         string
	AppEnv           string
	BaseAssetFolder  string
	BaseOutputFolder string

	HTTPPort  int
	PublicURL string

	ClientSecretFile string
	TokenFile        string
	RedirectURL      string
	CategoryID       string
	PrivacyStatus    string

	QuoteAPIBaseURL     string
	QuoteTimeoutSeconds int
	WrapWidth           int

	FFmpegPath      string
	FontFile        string
	BackgroundImage string
	MusicFolder     string
	DurationSeconds float64
	FadeInSeconds   float64
	FadeOutStart    float64
	FadeOutSeconds  float64
	FontSize        int
	AuthorFontSize  int
	FontColor       string

	DBURL      string
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RabbitMQHost     string
	RabbitMQPort     int
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQVHost    string
}

func Load() (Config, error) {
	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	ini, err := readINI(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", configPath, err)
	}

	cfg := Config{}
	cfg.Hostname = ini.get("app", "hostname")
	if cfg.Hostname == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Hostname = host
		}
	}
	cfg.AppEnv = ini.getDefault("app", "env", "production")

	// The asset folder defaults to the directory the binary runs from, so a
	// checkout with the font, background image and songs next to the binary
	// works with an empty config.
	cfg.BaseAssetFolder = ini.get("app", "base_asset_folder")
	if cfg.BaseAssetFolder == "" {
		cfg.BaseAssetFolder = executableDir()
	}
	cfg.BaseOutputFolder = ini.getDefault("app", "base_output_folder", filepath.Join(cfg.BaseAssetFolder, "output"))

	cfg.HTTPPort = firstNonEmptyIntDefault(8080, ini.get("http", "port"), os.Getenv("QUOTEREEL_PORT"))
	cfg.PublicURL = firstNonEmpty(ini.get("http", "public_url"), os.Getenv("QUOTEREEL_PUBLIC_URL"))

	cfg.ClientSecretFile = ini.getDefault("youtube", "client_secret_file", filepath.Join(cfg.BaseAssetFolder, "client_secrets.json"))
	cfg.TokenFile = ini.getDefault("youtube", "token_file", filepath.Join(cfg.BaseAssetFolder, "tokens.json"))
	cfg.RedirectURL = ini.get("youtube", "redirect_url")
	cfg.CategoryID = ini.getDefault("youtube", "category_id", "27")
	cfg.PrivacyStatus = ini.getDefault("youtube", "privacy_status", "public")

	cfg.QuoteAPIBaseURL = ini.getDefault("quotes", "api_base_url", "https://api.quotable.io")
	cfg.QuoteTimeoutSeconds = ini.getIntDefault("quotes", "timeout_seconds", 5)
	cfg.WrapWidth = ini.getIntDefault("quotes", "wrap_width", 25)

	cfg.FFmpegPath = ini.getDefault("render", "ffmpeg_path", "ffmpeg")
	cfg.FontFile = ini.getDefault("render", "font_file", filepath.Join(cfg.BaseAssetFolder, "Poppins-Regular.ttf"))
	cfg.BackgroundImage = ini.getDefault("render", "background_image", filepath.Join(cfg.BaseAssetFolder, "background.jpg"))
	cfg.MusicFolder = ini.getDefault("render", "music_folder", filepath.Join(cfg.BaseAssetFolder, "trending_songs"))
	cfg.DurationSeconds = ini.getFloatDefault("render", "duration_seconds", 7)
	cfg.FadeInSeconds = ini.getFloatDefault("render", "fade_in_seconds", 1)
	cfg.FadeOutStart = ini.getFloatDefault("render", "fade_out_start", 6)
	cfg.FadeOutSeconds = ini.getFloatDefault("render", "fade_out_seconds", 1)
	cfg.FontSize = ini.getIntDefault("render", "font_size", 65)
	cfg.AuthorFontSize = ini.getIntDefault("render", "author_font_size", 50)
	cfg.FontColor = ini.getDefault("render", "font_color", "white")

	cfg.DBURL = firstNonEmpty(ini.get("db", "url"), ini.get("db", "database_url"), os.Getenv("DATABASE_URL"))
	cfg.DBHost = ini.get("db", "host")
	cfg.DBPort = ini.getIntDefault("db", "port", 5432)
	cfg.DBName = ini.getDefault("db", "name", "quotereel")
	cfg.DBUser = ini.getDefault("db", "user", "quotereel")
	cfg.DBPassword = ini.get("db", "password")
	cfg.DBSSLMode = ini.getDefault("db", "sslmode", "prefer")

	cfg.RabbitMQHost = ini.get("rabbitmq", "host")
	cfg.RabbitMQPort = ini.getIntDefault("rabbitmq", "port", 5672)
	cfg.RabbitMQUser = ini.getDefault("rabbitmq", "user", "guest")
	cfg.RabbitMQPassword = ini.getDefault("rabbitmq", "password", "guest")
	cfg.RabbitMQVHost = ini.getDefault("rabbitmq", "vhost", "/")

	if cfg.BaseAssetFolder == "" {
		return cfg, errors.New("app.base_asset_folder must be set in config.ini (or the binary must be runnable from its asset directory)")
	}

	return cfg, nil
}

// HistoryEnabled reports whether an upload-history database is configured.
func (c Config) HistoryEnabled() bool {
	return c.DBURL != "" || c.DBHost != ""
}

// QueueEnabled reports whether a RabbitMQ trigger is configured.
func (c Config) QueueEnabled() bool {
	return c.RabbitMQHost != ""
}

func (c Config) DBConnString() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBUser,
		c.DBPassword,
		c.DBSSLMode,
	)
}

func (c Config) RabbitMQURL() string {
	vhost := strings.TrimPrefix(c.RabbitMQVHost, "/")
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d/%s",
		c.RabbitMQUser,
		c.RabbitMQPassword,
		c.RabbitMQHost,
		c.RabbitMQPort,
		vhost,
	)
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// iniData is the parsed config file: section -> key -> raw value. Section and
// key names are lowercased at parse time so lookups are case-insensitive.
type iniData map[string]map[string]string

func readINI(path string) (iniData, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config is fine; every key has a usable default.
			return iniData{}, nil
		}
		return nil, err
	}
	defer file.Close()

	data := iniData{}
	section := "default"

	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"), strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			if section == "" {
				return nil, fmt.Errorf("invalid section header at line %d", lineNo)
			}
		default:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, fmt.Errorf("invalid line %d: %q", lineNo, line)
			}
			key = strings.ToLower(strings.TrimSpace(key))
			if key == "" {
				return nil, fmt.Errorf("empty key at line %d", lineNo)
			}
			if data[section] == nil {
				data[section] = map[string]string{}
			}
			data[section][key] = trimQuotes(strings.TrimSpace(value))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

func trimQuotes(value string) string {
	for _, q := range []byte{'"', '\''} {
		if len(value) >= 2 && value[0] == q && value[len(value)-1] == q {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func (ini iniData) get(section, key string) string {
	if section == "" {
		section = "default"
	}
	return ini[strings.ToLower(section)][strings.ToLower(key)]
}

func (ini iniData) getDefault(section, key, fallback string) string {
	if value := ini.get(section, key); value != "" {
		return value
	}
	return fallback
}

func (ini iniData) getIntDefault(section, key string, fallback int) int {
	if parsed, err := strconv.Atoi(ini.get(section, key)); err == nil {
		return parsed
	}
	return fallback
}

func (ini iniData) getFloatDefault(section, key string, fallback float64) float64 {
	if parsed, err := strconv.ParseFloat(ini.get(section, key), 64); err == nil {
		return parsed
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func firstNonEmptyIntDefault(fallback int, values ...string) int {
	for _, value := range values {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
