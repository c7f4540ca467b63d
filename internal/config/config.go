package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	API      APIConfig
	PayOS    PayOSConfig
	Pharmacy PharmacyConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Pass            string
	Charset         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type APIConfig struct {
	Key string
}

type PayOSConfig struct {
	ClientID    string
	APIKey      string
	ChecksumKey string
	BaseURL     string
	CancelURL   string
	ReturnURL   string
	Timeout     time.Duration
}

type PharmacyConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PAYOS_BASE_URL", "https://api-merchant.payos.vn")
	viper.SetDefault("PAYOS_TIMEOUT", "30s")
	viper.SetDefault("PHARMACY_TIMEOUT", "10s")

	payosTimeout, err := time.ParseDuration(viper.GetString("PAYOS_TIMEOUT"))
	if err != nil {
		payosTimeout = 30 * time.Second
	}
	pharmacyTimeout, err := time.ParseDuration(viper.GetString("PHARMACY_TIMEOUT"))
	if err != nil {
		pharmacyTimeout = 10 * time.Second
	}
	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		connMaxLifetime = time.Hour
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			Name:            viper.GetString("DB_NAME"),
			User:            viper.GetString("DB_USER"),
			Pass:            viper.GetString("DB_PASS"),
			Charset:         viper.GetString("DB_CHARSET"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
		PayOS: PayOSConfig{
			ClientID:    viper.GetString("PAYOS_CLIENT_ID"),
			APIKey:      viper.GetString("PAYOS_API_KEY"),
			ChecksumKey: viper.GetString("PAYOS_CHECKSUM_KEY"),
			BaseURL:     viper.GetString("PAYOS_BASE_URL"),
			CancelURL:   viper.GetString("PAYOS_CANCEL_URL"),
			ReturnURL:   viper.GetString("PAYOS_RETURN_URL"),
			Timeout:     payosTimeout,
		},
		Pharmacy: PharmacyConfig{
			BaseURL: viper.GetString("PHARMACY_BASE_URL"),
			Timeout: pharmacyTimeout,
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.PayOS.ChecksumKey == "" {
		log.Println("WARNING: PAYOS_CHECKSUM_KEY is not set")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the database section, for one-shot migrations.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
