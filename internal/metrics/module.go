package metrics

import (
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/usecase"
)

// Module provides the process metrics registry.
var Module = fx.Provide(
	New,
	func(m *Metrics) usecase.UpdateRecorder { return m },
)
