package inventory

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the inventory service.
type Config struct {
	Addr           string   `env:"ADDR,default=:8080"`
	DataDir        string   `env:"DATA_DIR,default=./data"`
	Title          string   `env:"MACHBOARD_TITLE,default=Machine Inventory"`
	SeedFile       string   `env:"SEED_FILE"`
	NATSURL        string   `env:"NATS_URL"`
	SnapshotBucket string   `env:"SNAPSHOT_BUCKET"`
	OTLPEndpoint   string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
}

// LoadConfig returns a Config populated from environment variables.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
