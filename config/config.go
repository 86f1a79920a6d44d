package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SHOP_CONFIG_FILE"

type storage struct {
	MongoURI string `mapstructure:"mongo_uri"`
	Database string `mapstructure:"database"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t brokerTLS) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type analytics struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	ChangeEventsTopic  string    `mapstructure:"change_events_topic"`
	TLS                brokerTLS `mapstructure:"tls"`
}

// Enabled reports whether the Kafka analytics mirror should run.
// An empty broker list means the deployment has no Kafka at all.
func (a analytics) Enabled() bool {
	return len(a.SeedBrokers) != 0
}

type Config struct {
	LogLevel       slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr string        `mapstructure:"http_server_addr"`
	HandleTimeout  time.Duration `mapstructure:"handle_timeout"`
	Storage        storage       `mapstructure:"storage"`
	Analytics      analytics     `mapstructure:"analytics"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HandleTimeout=%q

	Storage:
	MongoURI=%q
	Database=%q

	Analytics:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	ChangeEventsTopic=%q
	TLSEnabled=%v

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HandleTimeout,
		c.Storage.MongoURI,
		c.Storage.Database,
		c.Analytics.SeedBrokers,
		c.Analytics.SchemaRegistryURLs,
		c.Analytics.ChangeEventsTopic,
		c.Analytics.TLS.Enabled(),
	)
}
