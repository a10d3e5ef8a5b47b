// Package observability provides structured logging for the parlor server.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/parlor/internal/config"
)

// Field keys shared by every component so log queries can join on them.
const (
	FieldService = "service"
	FieldRoom    = "room_id"
	FieldConn    = "conn_id"
	FieldGame    = "game"
	FieldEvent   = "event"
)

// NewLogger creates a structured logger from the given logging configuration.
// Every entry carries a constant service field.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, service string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if service != "" {
		zapCfg.InitialFields = map[string]interface{}{FieldService: service}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Conn returns the standard field for a connection identifier.
func Conn(connID string) zap.Field { return zap.String(FieldConn, connID) }

// Room returns the standard field for a room identifier.
func Room(roomID string) zap.Field { return zap.String(FieldRoom, roomID) }

// Game returns the standard field for a game type tag.
func Game(tag string) zap.Field { return zap.String(FieldGame, tag) }

// Event returns the standard field for a protocol event type.
func Event(eventType string) zap.Field { return zap.String(FieldEvent, eventType) }
