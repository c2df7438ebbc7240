// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса оформления
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	BrandsPath              string `yaml:"brands_path"`
	PoolsPath               string `yaml:"pools_path"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RabbitConnectionString  string `yaml:"rabbit_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	PriceFeed               `yaml:"price_feed"`
	AddressService          `yaml:"address_service"`
	Checkout                `yaml:"checkout"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Redis хранит распределённые аренды адресов; при Enabled=false аренды
// ведутся в памяти процесса.
type RedisConnection struct {
	Enabled      bool          `yaml:"enabled" env-default:"false"`
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// PriceFeed структура для настройки опроса прайс-фида
type PriceFeed struct {
	FeedURL         string        `yaml:"feed_url"`
	FeedTimeout     time.Duration `yaml:"feed_timeout" env-default:"10s"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"60s"`
	Freshness       time.Duration `yaml:"freshness" env-default:"60s"`
}

// AddressService настраивает внешний сервис выдачи адресов.
// Пустой URL означает выдачу из статических пулов PoolsPath.
type AddressService struct {
	AddressServiceURL string        `yaml:"address_service_url"`
	AddressTimeout    time.Duration `yaml:"address_timeout" env-default:"10s"`
}

// Checkout структура для настройки движка сессии
type Checkout struct {
	Window            time.Duration `yaml:"window" env-default:"30m"`
	NarrationInterval time.Duration `yaml:"narration_interval" env-default:"1600ms"`
	SessionTTL        time.Duration `yaml:"session_ttl" env-default:"2h"`
	JanitorInterval   time.Duration `yaml:"janitor_interval" env-default:"5m"`
}

// MustLoad функция для загрузки конфига, падает при отсутствии CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"BrandsPath: %s\n"+
			"PoolsPath: %s\n"+
			"StorageConnectionString: %s\n"+
			"RabbitConnectionString: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"PriceFeed:\n"+
			"  URL: %s\n"+
			"  RefreshInterval: %s\n"+
			"  Freshness: %s\n"+
			"Checkout:\n"+
			"  Window: %s\n"+
			"  NarrationInterval: %s\n"+
			"  SessionTTL: %s\n",
		c.Env,
		c.BrandsPath,
		c.PoolsPath,
		c.StorageConnectionString,
		c.RabbitConnectionString,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.FeedURL,
		c.RefreshInterval,
		c.Freshness,
		c.Window,
		c.NarrationInterval,
		c.SessionTTL,
	)
}
