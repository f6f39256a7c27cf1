package auth

import "go.uber.org/fx"

// Module provides the authorization flow dependencies
var Module = fx.Module("auth",
	fx.Provide(
		NewService,
	),
)
