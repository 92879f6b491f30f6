package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Kafka.Enabled {
		t.Error("Kafka.Enabled = true, want disabled by default")
	}
	if cfg.Worker.Concurrency != 4 {
		t.Errorf("Worker.Concurrency = %d, want 4", cfg.Worker.Concurrency)
	}
	if cfg.Worker.SweepSchedule != "@every 15m" {
		t.Errorf("Worker.SweepSchedule = %q", cfg.Worker.SweepSchedule)
	}
	if !cfg.Alerting.MailEnabled {
		t.Error("Alerting.MailEnabled = false, want enabled by default")
	}
	if cfg.Alerting.PatternWindow != 24*time.Hour {
		t.Errorf("Alerting.PatternWindow = %v, want 24h", cfg.Alerting.PatternWindow)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8181")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("ALERT_PATTERN_WINDOW", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if !cfg.Kafka.Enabled {
		t.Error("Kafka.Enabled = false, want true")
	}
	if cfg.Kafka.Brokers != "kafka-1:9092,kafka-2:9092" {
		t.Errorf("Kafka.Brokers = %q", cfg.Kafka.Brokers)
	}
	if cfg.Alerting.PatternWindow != 2*time.Hour {
		t.Errorf("Alerting.PatternWindow = %v, want 2h", cfg.Alerting.PatternWindow)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("ALERT_MAIL_ENABLED", "maybe")
	t.Setenv("ALERT_PATTERN_WINDOW", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want default 9090", cfg.Server.Port)
	}
	if !cfg.Alerting.MailEnabled {
		t.Error("Alerting.MailEnabled = false, want default true")
	}
	if cfg.Alerting.PatternWindow != 24*time.Hour {
		t.Errorf("Alerting.PatternWindow = %v, want default 24h", cfg.Alerting.PatternWindow)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 9090},
			Database: DatabaseConfig{Driver: "sqlite"},
			Worker:   WorkerConfig{Concurrency: 4},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"zero concurrency", func(c *Config) { c.Worker.Concurrency = 0 }, true},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka = KafkaConfig{Enabled: true} }, true},
		{"kafka enabled with brokers", func(c *Config) {
			c.Kafka = KafkaConfig{Enabled: true, Brokers: "localhost:9092"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
