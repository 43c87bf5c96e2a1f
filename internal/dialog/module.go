package dialog

import (
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/usecase"
)

// Module provides the dialog coordinator backed by the status command.
var Module = fx.Provide(
	func(cmd *usecase.StatusCommand) Submitter { return cmd },
	NewCoordinator,
)
