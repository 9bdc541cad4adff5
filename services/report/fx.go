package report

import (
	"go.uber.org/fx"
)

var Module = fx.Module("report.module",
	fx.Provide(NewService),
)
