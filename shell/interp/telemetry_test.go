package interp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

func newTelemetryInterp(out *bytes.Buffer) *Interp {
	s := state.New()
	s.Builtins["true"] = func(s *state.State, c *ctx.CommandContext) int { return 0 }
	v := vfs.New(nil, nil)
	return New(s, v, out, out, nil)
}

func TestRunWithResultReportsExitCodeAndSteps(t *testing.T) {
	var out bytes.Buffer
	i := newTelemetryInterp(&out)
	res := i.RunWithResult("true\ntrue\nexit 3\n")
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, 3, res.StepsRun)
	assert.Equal(t, time.Duration(0), res.Duration)
}

func TestRunWithResultMeasuresDurationWhenTimingEnabled(t *testing.T) {
	var out bytes.Buffer
	i := newTelemetryInterp(&out)
	i.Telemetry = TelemetryTiming
	res := i.RunWithResult("true\n")
	assert.GreaterOrEqual(t, res.Duration, time.Duration(0))
}

func TestRunWithResultResetsStepCountBetweenRuns(t *testing.T) {
	var out bytes.Buffer
	i := newTelemetryInterp(&out)
	i.RunWithResult("true\ntrue\ntrue\n")
	res := i.RunWithResult("true\n")
	assert.Equal(t, 1, res.StepsRun)
}
