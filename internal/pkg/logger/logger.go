// Package logger builds the zerolog loggers used across the pipeline.
package logger

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"orderpipe/internal/pkg/config"
)

// Structured field names shared by every stage.
const (
	FieldService = "service"
	FieldRunID   = "run_id"
	FieldStage   = "stage"
	FieldEvent   = "event"
	FieldOrderID = "order_id"
	FieldProduct = "product"
	FieldReason  = "reason"
)

// consoleHidden are kept in JSON output but dropped from the console so that
// each console line is exactly the human readable message.
var consoleHidden = []string{FieldService, FieldRunID, FieldStage, FieldEvent, FieldOrderID, FieldProduct, FieldReason}

// New returns a logger writing to out in the configured format.
func New(cfg config.Log, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	console := zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       true,
		PartsOrder:    []string{zerolog.MessageFieldName},
		FieldsExclude: consoleHidden,
	}
	return zerolog.New(console).Level(level)
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// Ctx returns the logger stored in ctx, or a disabled logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
