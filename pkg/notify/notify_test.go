package notify

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDuration(t *testing.T) {
	assert.Equal(t, DefaultDuration, ResolveDuration(SeverityInfo, 0))
	assert.Equal(t, DefaultErrorDuration, ResolveDuration(SeverityError, 0))
	assert.Equal(t, DefaultErrorDuration, ResolveDuration(SeverityError, -time.Second))
	assert.Equal(t, time.Second, ResolveDuration(SeverityError, time.Second))
}

func TestLogSink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := LogSink{Logger: logger}

	sink.Notify("saved", SeveritySuccess, 0)
	sink.Notify("careful", SeverityWarning, 0)
	sink.Notify("broken", SeverityError, 0)

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
	assert.Equal(t, "error", entries[2].Data["severity"])
}

func TestMulti(t *testing.T) {
	var got []string
	a := SinkFunc(func(m string, s Severity, d time.Duration) { got = append(got, "a:"+m) })
	b := SinkFunc(func(m string, s Severity, d time.Duration) { got = append(got, "b:"+m) })

	Multi(a, nil, b).Notify("hello", SeverityInfo, 0)
	assert.Equal(t, []string{"a:hello", "b:hello"}, got)

	assert.NotPanics(t, func() { Discard.Notify("x", SeverityInfo, 0) })
}
