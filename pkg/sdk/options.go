package schemefinder

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "json", "redis" or "postgres"
	path      string
	addrs     []string
	password  string
	keyPrefix string
	dsn       string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDataset reads schemes from a JSON dataset file. The client is read-only.
func WithDataset(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "json"
		c.path = path
	})
}

// WithRedis reads schemes stored by the API server in Redis.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "schemefinder:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithPostgres reads schemes stored by the API server in Postgres.
// Pending migrations are applied on connect.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "postgres"
		c.dsn = dsn
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// MatchOption refines a Match call.
type MatchOption func(*matchOptions)

type matchOptions struct {
	text   string
	tag    string
	byName bool
}

// WithText keeps matches whose name, summary or tags contain text (case-insensitive).
func WithText(text string) MatchOption {
	return func(o *matchOptions) { o.text = text }
}

// WithTag keeps matches carrying tag.
func WithTag(tag string) MatchOption {
	return func(o *matchOptions) { o.tag = tag }
}

// SortByName orders matches by name instead of score.
func SortByName() MatchOption {
	return func(o *matchOptions) { o.byName = true }
}
