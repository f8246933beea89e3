// Package config loads the correlation engine's static configuration:
// the chain↔EID↔slug↔explorer tables (spec §6 "static configuration")
// and the ambient app config (store backend, subscriber backend,
// server bind address), via viper/mapstructure the way the teacher's
// internal/config package does.
package config

import (
	"fmt"

	"github.com/chainrelay/correlator/internal/identity"
	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Store      StoreConfig       `mapstructure:"store"`
	Subscriber SubscriberConfig  `mapstructure:"subscriber"`
	Chains     []ChainMapEntry   `mapstructure:"chains"`
}

// ServerConfig is the ambient health/metrics HTTP surface.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StoreConfig selects and configures the entity store backend.
type StoreConfig struct {
	Backend  string         `mapstructure:"backend"` // "memory" or "postgres"
	Postgres DatabaseConfig `mapstructure:"postgres"`
}

// DatabaseConfig is the Postgres connection configuration, mirroring
// the teacher's internal/config.DatabaseConfig.
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// SubscriberConfig selects and configures the raw-event subscriber.
type SubscriberConfig struct {
	Backend string   `mapstructure:"backend"` // "nats" or "memory"
	URLs    []string `mapstructure:"urls"`
	Subject string   `mapstructure:"subject"`
}

// ChainMapEntry is one row of the static chain table, as loaded from
// configuration before being handed to identity.NewChainTable.
type ChainMapEntry struct {
	ChainID     uint64 `mapstructure:"chain_id"`
	Eid         uint32 `mapstructure:"eid"`
	Slug        string `mapstructure:"slug"`
	ExplorerURL string `mapstructure:"explorer_url"`
	Domain      *uint32 `mapstructure:"domain"`
}

// Load reads configuration from the given file path using viper.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9090)
	v.SetDefault("store.backend", "memory")
	v.SetDefault("subscriber.backend", "memory")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ChainTable builds the immutable identity.ChainTable from the loaded
// chain entries.
func (c *Config) ChainTable() *identity.ChainTable {
	entries := make([]identity.ChainEntry, 0, len(c.Chains))
	for _, e := range c.Chains {
		entry := identity.ChainEntry{
			ChainID:     e.ChainID,
			Eid:         e.Eid,
			Slug:        e.Slug,
			ExplorerURL: e.ExplorerURL,
		}
		if e.Domain != nil {
			entry.Domain = *e.Domain
			entry.HasDomain = true
		}
		entries = append(entries, entry)
	}
	return identity.NewChainTable(entries)
}

// DefaultChainTable is a small built-in table covering the chains used
// by the worked examples in spec §8 (S1–S6), for tests and for running
// the engine without an external config file.
func DefaultChainTable() *identity.ChainTable {
	domainEthereum := uint32(0)
	domainArbitrum := uint32(3)
	return identity.NewChainTable([]identity.ChainEntry{
		{ChainID: 1, Eid: 30101, Slug: "ethereum", ExplorerURL: "https://etherscan.io", Domain: domainEthereum, HasDomain: true},
		{ChainID: 8453, Eid: 30184, Slug: "base", ExplorerURL: "https://basescan.org"},
		{ChainID: 42161, Eid: 30110, Slug: "arbitrum", ExplorerURL: "https://arbiscan.io", Domain: domainArbitrum, HasDomain: true},
	})
}
