package dashboard

import (
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.module",
	fx.Provide(NewService),
)
