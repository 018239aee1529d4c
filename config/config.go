package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	mu sync.Mutex `yaml:"-"`

	SAP       SAPConfig       `yaml:"sap"`
	Database  DatabaseConfig  `yaml:"database"`
	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SAPConfig defines the DI API company connection.
type SAPConfig struct {
	Server       string `yaml:"server"`
	CompanyDB    string `yaml:"company_db"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Language     string `yaml:"language"`
	DBServerType string `yaml:"db_server_type"`
	UseTrusted   bool   `yaml:"use_trusted"`
	ProgID       string `yaml:"prog_id"`
}

// DatabaseConfig defines the SQL Server connection for the company database.
// The database name itself is sap.company_db.
type DatabaseConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	SessionSecret     string `yaml:"session_secret"`
	AdminUser         string `yaml:"admin_user"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
}

// MessagingConfig defines the sync-event publisher backend. It is also the
// payload of the admin config endpoint, hence the json tags.
type MessagingConfig struct {
	Enabled   bool        `yaml:"enabled" json:"enabled"`
	Backend   string      `yaml:"backend" json:"backend"` // "mqtt" or "kafka"
	MQTT      MQTTConfig  `yaml:"mqtt" json:"mqtt"`
	Kafka     KafkaConfig `yaml:"kafka" json:"kafka"`
	SyncTopic string      `yaml:"sync_topic" json:"sync_topic"`
}

// MQTTConfig defines MQTT broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker" json:"broker"`
	Port     int    `yaml:"port" json:"port"`
	ClientID string `yaml:"client_id" json:"client_id"`
}

// KafkaConfig defines Kafka broker settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" json:"brokers"`
}

// LoggingConfig defines log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		SAP: SAPConfig{
			Server:       "localhost",
			Language:     "ln_English",
			DBServerType: "dst_MSSQL2019",
			ProgID:       "SAPbobsCOM.Company",
		},
		Database: DatabaseConfig{
			Server: "localhost",
			Port:   1433,
		},
		Web: WebConfig{
			Host:      "0.0.0.0",
			Port:      8082,
			AdminUser: "admin",
		},
		Messaging: MessagingConfig{
			Backend:   "mqtt",
			SyncTopic: "b1bridge/sync",
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "b1bridge",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML config file. If the file doesn't exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Lock acquires the config mutex for multi-step mutations.
func (c *Config) Lock() { c.mu.Lock() }

// Unlock releases the config mutex.
func (c *Config) Unlock() { c.mu.Unlock() }
