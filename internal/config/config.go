package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTPAddr     string   `koanf:"http_addr"`
	PostgresDSN  string   `koanf:"postgres_dsn"` // kosong -> order store in-memory
	RedisAddr    string   `koanf:"redis_addr"`   // kosong -> kv in-memory
	KafkaBrokers []string `koanf:"kafka_brokers"`
	ServiceName  string   `koanf:"service_name"`
	LogFile      string   `koanf:"log_file"`

	Auth struct {
		AdminEmail        string        `koanf:"admin_email"`
		AdminPasswordHash string        `koanf:"admin_password_hash"` // bcrypt
		JWTSecret         string        `koanf:"jwt_secret"`
		SessionTTL        time.Duration `koanf:"session_ttl"`
		FirebaseAPIKey    string        `koanf:"firebase_api_key"` // kosong -> provider in-memory
	} `koanf:"auth"`

	Checkout struct {
		PaymentDelay  time.Duration `koanf:"payment_delay"`
		InFlightTTL   time.Duration `koanf:"inflight_ttl"`
		ReplayTTL     time.Duration `koanf:"replay_ttl"`
		OperatorEmail string        `koanf:"operator_email"`
	} `koanf:"checkout"`

	Notify struct {
		Mode       string `koanf:"mode"` // log | email | kafka
		ServiceID  string `koanf:"service_id"`
		TemplateID string `koanf:"template_id"`
		PublicKey  string `koanf:"public_key"`
		Endpoint   string `koanf:"endpoint"`
		Group      string `koanf:"group"`
		Workers    int    `koanf:"workers"`
	} `koanf:"notify"`
}

var defaults = map[string]any{
	"http_addr":               ":8081",
	"redis_addr":              "",
	"kafka_brokers":           "kafka:9092",
	"service_name":            "catrink-api",
	"log_file":                "./logs/app.log",
	"auth.admin_email":        "admin@catrink.in",
	"auth.session_ttl":        "12h",
	"checkout.payment_delay":  "3s",
	"checkout.inflight_ttl":   "1m",
	"checkout.replay_ttl":     "24h",
	"checkout.operator_email": "flayermc.in@gmail.com",
	"notify.mode":             "log",
	"notify.template_id":      "template_c2wun1e",
	"notify.endpoint":         "https://api.emailjs.com/api/v1.0/email/send",
	"notify.group":            "catrink-notifier",
	"notify.workers":          4,
}

// Load layers defaults, the optional CONFIG_FILE yaml and CATRINK_* env vars
// (nested keys use "__", e.g. CATRINK_AUTH__JWT_SECRET).
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("CATRINK_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CATRINK_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.KafkaBrokers = splitCSV(cfg.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http_addr required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret required")
	}
	if c.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("auth.admin_password_hash required (bcrypt)")
	}
	switch c.Notify.Mode {
	case "log", "email", "kafka":
	default:
		return fmt.Errorf("notify.mode must be log, email or kafka, got %q", c.Notify.Mode)
	}
	if c.Notify.Mode == "kafka" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("kafka_brokers required for notify.mode=kafka")
	}
	return nil
}

// splitCSV accepts both yaml lists and "a,b" strings coming from env.
func splitCSV(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
