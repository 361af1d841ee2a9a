package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	JwtTTL                    time.Duration `yaml:"jwt_ttl"`
	MinPasswordLen            int           `yaml:"min_password_len"`
	WaitlistPageSize          int           `yaml:"waitlist_page_size"`
	RevocationRefreshInterval time.Duration `yaml:"revocation_refresh_interval"`
	AuditRetentionDays        int           `yaml:"audit_retention_days"`
	AuditSweepInterval        time.Duration `yaml:"audit_sweep_interval"`
	SecureCookies             bool          `yaml:"secure_cookies"`
	AllowedOrigins            []string      `yaml:"allowed_origins"`
	LogLevel                  string        `yaml:"log_level"`
	LogJSON                   bool          `yaml:"log_json"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
	Smtp   Smtp   `yaml:"smtp"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

// Smtp is optional; when Server is empty the mailer logs to stdout instead.
type Smtp struct {
	Server     string `yaml:"server"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + configPath)
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder and panics
// on any missing file or required field. Misconfiguration should kill the
// process before it starts serving.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.mustValidate()
	return cfg
}

func (c *Config) mustValidate() {
	required := map[string]bool{
		"jwt_ttl":                     c.Public.JwtTTL > 0,
		"min_password_len":            c.Public.MinPasswordLen > 0,
		"waitlist_page_size":          c.Public.WaitlistPageSize > 0,
		"revocation_refresh_interval": c.Public.RevocationRefreshInterval > 0,
		"jwt_key":                     c.Private.JwtKey != "",
		"pg.host":                     c.Private.Pg.Host != "",
		"pg.port":                     c.Private.Pg.Port != 0,
		"pg.user":                     c.Private.Pg.User != "",
		"pg.dbname":                   c.Private.Pg.Dbname != "",
	}
	for field, ok := range required {
		if !ok {
			panic(fmt.Sprintf("config: required field %q is missing or zero", field))
		}
	}
}
