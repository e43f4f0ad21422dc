package metrics

import "go.uber.org/fx"

// Module provides the shared metrics collectors.
var Module = fx.Provide(New)
