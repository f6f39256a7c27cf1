package store

import "go.uber.org/fx"

// Module provides the user store dependencies
var Module = fx.Module("store",
	fx.Provide(
		NewUserStore,
	),
)
