package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"notification-center/internal/models"
)

func activePref(channels ...string) models.Preference {
	return models.Preference{
		UserID:    1,
		Category:  models.CategoryProject,
		Channels:  channels,
		Frequency: models.FrequencyImmediate,
		IsActive:  true,
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestResolveInactiveSuppressesEveryChannel(t *testing.T) {
	pref := activePref(models.ChannelEmail, models.ChannelInApp)
	pref.IsActive = false

	for _, ch := range []string{models.ChannelEmail, models.ChannelPush, models.ChannelSMS, models.ChannelInApp} {
		d := Resolve(pref, ch, at(12, 0))
		assert.Equal(t, Suppress, d.Verdict, "channel %s", ch)
	}
}

func TestResolveDisabledChannelSuppresses(t *testing.T) {
	pref := activePref(models.ChannelEmail)

	assert.Equal(t, Deliver, Resolve(pref, models.ChannelEmail, at(12, 0)).Verdict)
	assert.Equal(t, Suppress, Resolve(pref, models.ChannelSMS, at(12, 0)).Verdict)
}

func TestResolveQuietHoursMidnightWrap(t *testing.T) {
	pref := activePref(models.ChannelEmail)
	pref.QuietStart = "22:00"
	pref.QuietEnd = "08:00"

	// 23:30 is inside the window; eligible again at 08:00 the next day.
	d := Resolve(pref, models.ChannelEmail, at(23, 30))
	assert.Equal(t, Defer, d.Verdict)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), d.NextEligible)

	// 02:15 is inside the wrapped tail; eligible the same morning.
	d = Resolve(pref, models.ChannelEmail, at(2, 15))
	assert.Equal(t, Defer, d.Verdict)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), d.NextEligible)

	// 09:00 is outside the window.
	d = Resolve(pref, models.ChannelEmail, at(9, 0))
	assert.Equal(t, Deliver, d.Verdict)
}

func TestResolveQuietHoursSameDayWindow(t *testing.T) {
	pref := activePref(models.ChannelInApp)
	pref.QuietStart = "12:00"
	pref.QuietEnd = "14:00"

	d := Resolve(pref, models.ChannelInApp, at(13, 0))
	assert.Equal(t, Defer, d.Verdict)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), d.NextEligible)

	// Window start is inclusive, end is exclusive.
	assert.Equal(t, Defer, Resolve(pref, models.ChannelInApp, at(12, 0)).Verdict)
	assert.Equal(t, Deliver, Resolve(pref, models.ChannelInApp, at(14, 0)).Verdict)
	assert.Equal(t, Deliver, Resolve(pref, models.ChannelInApp, at(11, 59)).Verdict)
}

func TestResolveFrequency(t *testing.T) {
	tests := []struct {
		freq models.Frequency
		want Verdict
	}{
		{models.FrequencyImmediate, Deliver},
		{models.FrequencyDaily, Batch},
		{models.FrequencyWeekly, Batch},
		{models.FrequencyNever, Suppress},
		{models.Frequency(""), Deliver},
	}
	for _, tt := range tests {
		pref := activePref(models.ChannelEmail)
		pref.Frequency = tt.freq
		d := Resolve(pref, models.ChannelEmail, at(12, 0))
		assert.Equal(t, tt.want, d.Verdict, "frequency %q", tt.freq)
	}
}

func TestResolveMalformedQuietHoursIgnored(t *testing.T) {
	pref := activePref(models.ChannelEmail)
	pref.QuietStart = "25:99"
	pref.QuietEnd = "08:00"

	assert.Equal(t, Deliver, Resolve(pref, models.ChannelEmail, at(23, 30)).Verdict)
}

func TestDefaultPreferenceDelivers(t *testing.T) {
	pref := models.DefaultPreference(7, "unrecognized-category")

	assert.Equal(t, Deliver, Resolve(pref, models.ChannelEmail, at(12, 0)).Verdict)
	assert.Equal(t, Deliver, Resolve(pref, models.ChannelInApp, at(12, 0)).Verdict)
	assert.Equal(t, Suppress, Resolve(pref, models.ChannelSMS, at(12, 0)).Verdict)
	assert.Equal(t, Suppress, Resolve(pref, models.ChannelPush, at(12, 0)).Verdict)
}
