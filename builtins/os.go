package builtins

import (
	"time"

	"luax/types"
)

var processStart = time.Now()

// builtinOsTime returns the current wall time in seconds since the epoch
// os.time() -> number
func builtinOsTime(ctx *types.Context, args []types.Value) types.Result {
	return types.Ok(types.NewNumber(float64(time.Now().Unix())))
}

// builtinOsClock returns seconds of elapsed run time
// os.clock() -> number
func builtinOsClock(ctx *types.Context, args []types.Value) types.Result {
	return types.Ok(types.NewNumber(time.Since(processStart).Seconds()))
}
