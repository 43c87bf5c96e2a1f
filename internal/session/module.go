package session

import "go.uber.org/fx"

// Module provides the partner session registry.
var Module = fx.Provide(NewRegistry)
