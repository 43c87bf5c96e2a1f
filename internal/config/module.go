package config

import "go.uber.org/fx"

// Module exposes the console configuration loader for fx graphs.
var Module = fx.Provide(Load)

// ServiceModule exposes the delivery service configuration loader for fx graphs.
var ServiceModule = fx.Provide(LoadService)
