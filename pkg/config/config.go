// Package config loads settings from the environment, after merging a local
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-insecure-secret-change"

// Config holds every runtime setting of the server and the batch tools.
type Config struct {
	DBDSN         string        `mapstructure:"db_dsn"`
	DBAutoMigrate bool          `mapstructure:"db_auto_migrate"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	UploadBase    string        `mapstructure:"upload_base"`
	HTTPAddr      string        `mapstructure:"http_addr"`
	MaxUploadMB   int64         `mapstructure:"max_upload_mb"`
	OCR           OCRConfig     `mapstructure:",squash"`
	OCRTimeout    time.Duration `mapstructure:"ocr_timeout"`
}

// OCRConfig selects and tunes the OCR engine.
type OCRConfig struct {
	Engine         string `mapstructure:"ocr_engine"`
	Lang           string `mapstructure:"ocr_lang"`
	PSMModes       string `mapstructure:"ocr_psm_modes"`
	DPI            int    `mapstructure:"ocr_dpi"`
	TessdataPrefix string `mapstructure:"tessdata_prefix"`
}

// Modes parses the comma separated PSM list.
func (o OCRConfig) Modes() ([]int, error) {
	var modes []int
	for _, part := range strings.Split(o.PSMModes, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 13 {
			return nil, fmt.Errorf("invalid psm %q in OCR_PSM_MODES", part)
		}
		modes = append(modes, n)
	}
	return modes, nil
}

var keys = []string{
	"db_dsn", "db_auto_migrate", "jwt_secret", "upload_base", "http_addr",
	"max_upload_mb", "ocr_engine", "ocr_lang", "ocr_psm_modes", "ocr_dpi",
	"tessdata_prefix", "ocr_timeout",
}

// Load reads ./.env when present (existing variables win) and then the
// process environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path.
func LoadFrom(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN reading %s: %v", envFile, err)
	}

	v := viper.New()
	v.SetDefault("db_auto_migrate", true)
	v.SetDefault("jwt_secret", devJWTSecret)
	v.SetDefault("upload_base", "uploads")
	v.SetDefault("http_addr", ":8081")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("ocr_engine", "gosseract")
	v.SetDefault("ocr_lang", "eng+ind")
	v.SetDefault("ocr_psm_modes", "6,3,4,11,12")
	v.SetDefault("ocr_dpi", 300)
	v.SetDefault("tessdata_prefix", "")
	v.SetDefault("ocr_timeout", "60s")
	v.SetDefault("db_dsn", "")
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.OCR.Modes(); err != nil {
		return nil, err
	}
	switch cfg.OCR.Engine {
	case "gosseract", "cli":
	default:
		return nil, fmt.Errorf("unknown OCR_ENGINE %q (want gosseract or cli)", cfg.OCR.Engine)
	}
	if cfg.JWTSecret == devJWTSecret {
		log.Printf("WARN JWT_SECRET not set, using development secret")
	}
	return &cfg, nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }
