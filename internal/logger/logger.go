package logger

import (
	"io"
	"log/slog"
	"os"
)

// Service names attached to every record.
const (
	ConsoleService  = "console"
	DeliveryService = "deliveryd"
)

// New creates a JSON slog.Logger on stdout tagged with the service name.
func New(service string) *slog.Logger {
	return newJSON(os.Stdout, service)
}

func newJSON(w io.Writer, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("service", service))
}
