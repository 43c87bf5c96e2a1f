package logger

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module wires the console logger for dependency injection.
var Module = fx.Provide(func() *slog.Logger { return New(ConsoleService) })

// ServiceModule wires the delivery service logger for dependency injection.
var ServiceModule = fx.Provide(func() *slog.Logger { return New(DeliveryService) })
