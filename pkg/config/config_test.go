package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 8, cfg.Scheduler.DailyStartHour)
	assert.Equal(t, 17, cfg.Scheduler.DailyEndHour)
	assert.Equal(t, 18, cfg.Scheduler.PeriodEndHour)
	assert.Equal(t, time.Friday, cfg.Scheduler.BlackoutWeekday)
	assert.Equal(t, 1, cfg.Scheduler.MinGapDays)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.SlotStep)
	assert.Equal(t, 90*time.Minute, cfg.Scheduler.DefaultDuration)
	assert.Equal(t, "2025-06-01", cfg.Scheduler.PeriodStart)
	assert.Equal(t, "2025-06-20", cfg.Scheduler.PeriodEnd)
	assert.False(t, cfg.Scheduler.PreloadValidated)
	assert.True(t, cfg.Scheduler.ScopeLock)
	assert.Equal(t, time.UTC, cfg.Scheduler.Location)
}

func TestLoadSchedulerOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_BLACKOUT_WEEKDAY", "none")
	t.Setenv("SCHEDULER_SLOT_STEP", "not-a-duration")
	t.Setenv("SCHEDULER_DAILY_START_HOUR", "9")
	t.Setenv("SCHEDULER_PRELOAD_VALIDATED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, NoBlackout, cfg.Scheduler.BlackoutWeekday)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.SlotStep)
	assert.Equal(t, 9, cfg.Scheduler.DailyStartHour)
	assert.True(t, cfg.Scheduler.PreloadValidated)
}

func TestLoadRejectsInvertedWorkingHours(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_DAILY_START_HOUR", "18")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMalformedPeriod(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_PERIOD_START", "01/06/2025")

	_, err := Load()
	require.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday(" Friday ")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, day)

	day, err = ParseWeekday("")
	require.NoError(t, err)
	assert.Equal(t, NoBlackout, day)

	_, err = ParseWeekday("funday")
	assert.Error(t, err)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
