package config

import (
	"strings"
	"time"
)

// Config holds all client configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api" validate:"required"`
	Poll     PollConfig     `mapstructure:"poll" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Requests RequestsConfig `mapstructure:"requests" validate:"required"`
	Batch    BatchConfig    `mapstructure:"batch" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// APIConfig describes how to reach the candidate backend.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// Timeout bounds each HTTP call. Zero disables the timeout.
	Timeout        time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

// PollConfig controls status polling.
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// RequestsConfig supplies the defaults for document requests.
type RequestsConfig struct {
	OrgName      string `mapstructure:"org_name" validate:"required"`
	SupportEmail string `mapstructure:"support_email" validate:"omitempty,email"`
	// UploadURLTemplate is expanded per candidate; "{id}" is replaced with
	// the candidate id.
	UploadURLTemplate string `mapstructure:"upload_url_template" validate:"required"`
	Channel           string `mapstructure:"channel" validate:"omitempty,oneof=auto email sms"`
	SendNow           bool   `mapstructure:"send_now"`
}

// UploadURL expands the template for one candidate.
func (r RequestsConfig) UploadURL(id string) string {
	return strings.ReplaceAll(r.UploadURLTemplate, "{id}", id)
}

// BatchConfig sizes the bulk intake worker pool.
type BatchConfig struct {
	Workers int `mapstructure:"workers" validate:"gt=0"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}
