package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/mongoinit/internal/app/system/timeouts"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	cur := timeouts.Current()
	assert.Equal(t, 7*time.Second, cur.Short)
	assert.Equal(t, timeouts.DefaultPing, cur.Ping)
	assert.Equal(t, timeouts.DefaultConnect, cur.Connect)
}

func TestConfigure_LongFloor(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Connect: 20 * time.Second, Short: 10 * time.Second, Long: time.Second})

	assert.Equal(t, 40*time.Second, timeouts.Long())
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Minute})
	timeouts.Reset()
	assert.Equal(t, timeouts.DefaultPing, timeouts.Ping())
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.New(core), "createUser")
	<-ctx.Done()
	cancel()

	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "operation timed out", logs.All()[0].Message)
	}
}
