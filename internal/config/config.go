package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/seedora/registry/internal/domain"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Pinning Pinning `yaml:"pinning"`
	Ledger  Ledger  `yaml:"ledger"`
}

type Server struct {
	ListenAddr     string `yaml:"listenAddr"`
	PostgresDsn    string `yaml:"postgresDsn"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisPassword  string `yaml:"redisPassword"`
	RedisDB        int    `yaml:"redisDB"`
	MemcachedAddr  string `yaml:"memcachedAddr"`
	EnableTrace    bool   `yaml:"enableTrace"`
	TraceEndpoint  string `yaml:"traceEndpoint"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

type Pinning struct {
	Endpoint  string `yaml:"endpoint"`
	Gateway   string `yaml:"gateway"`
	APIKey    string `yaml:"apiKey"`
	APISecret string `yaml:"apiSecret"`
}

type Ledger struct {
	NodeURL            string `yaml:"nodeURL"`
	NodeToken          string `yaml:"nodeToken"`
	AssetUnitName      string `yaml:"assetUnitName"`
	ConfirmationRounds uint64 `yaml:"confirmationRounds"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = domain.DefaultMaxUploadBytes
	}
	if config.Ledger.ConfirmationRounds == 0 {
		config.Ledger.ConfirmationRounds = domain.DefaultConfirmationRounds
	}

	return config, nil
}

// Domain projects the loaded file onto the settings handlers and usecases
// consume.
func (c Config) Domain() domain.Config {
	return domain.Config{
		ListenAddr:         c.Server.ListenAddr,
		GatewayBase:        c.Pinning.Gateway,
		AssetUnitName:      c.Ledger.AssetUnitName,
		ConfirmationRounds: c.Ledger.ConfirmationRounds,
		MaxUploadBytes:     c.Server.MaxUploadBytes,
	}
}
