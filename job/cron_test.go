package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubPurger struct {
	before time.Time
	n      int
	err    error
}

func (p *stubPurger) Purge(_ context.Context, before time.Time) (int, error) {
	p.before = before
	return p.n, p.err
}

func TestPurgeExpired(t *testing.T) {
	now := time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)
	p := &stubPurger{n: 4}

	n := PurgeExpired(context.Background(), p, 90, now, zaptest.NewLogger(t))

	assert.Equal(t, 4, n)
	assert.Equal(t, time.Date(2026, 7, 21, 2, 0, 0, 0, time.UTC), p.before)
}

func TestPurgeExpired_Error(t *testing.T) {
	p := &stubPurger{n: 1, err: errors.New("es down")}
	n := PurgeExpired(context.Background(), p, 30, time.Now(), zaptest.NewLogger(t))
	assert.Equal(t, 1, n)
}

func TestRetentionSpecParses(t *testing.T) {
	sched, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(RetentionSpec)
	require.NoError(t, err)

	from := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 20, 2, 0, 0, 0, time.UTC), sched.Next(from))
}

func TestStartCronJob(t *testing.T) {
	c, err := StartCronJob(&stubPurger{}, 90, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)

	c, err = StartCronJob(&stubPurger{}, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, c.Entries())
}
