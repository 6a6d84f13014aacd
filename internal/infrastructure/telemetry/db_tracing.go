package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sellerstats/backend/internal/infrastructure/config"
)

// DBTracingConfig controls the GORM tracing plugin
type DBTracingConfig struct {
	Enabled bool
	// DBName is reported as db.name on every statement span
	DBName string
	// WithQueryVariables includes bound values in db.statement. Values carry
	// seller data, so it stays off outside development.
	WithQueryVariables bool
}

// DBTracingConfigFrom derives database tracing from the telemetry and
// database sections. Tracing follows the telemetry switch.
func DBTracingConfigFrom(tel config.TelemetryConfig, db config.DatabaseConfig) DBTracingConfig {
	return DBTracingConfig{
		Enabled: tel.Enabled,
		DBName:  db.DBName,
	}
}

// RegisterGormTracing installs otelgorm on db so every statement becomes a
// child span of the caller's context, e.g. under syncer.sync_user. It uses
// the global tracer provider, so spans are dropped until New installs one.
func RegisterGormTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	logger = logger.Named("db_tracing")
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	var opts []otelgorm.Option
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if !cfg.WithQueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Bool("query_variables", cfg.WithQueryVariables),
	)
	return nil
}
