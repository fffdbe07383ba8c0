package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("hello %s", "world")
		l.Debug("debug %d", 1)
		l.Warning("warn")
		l.Error("err: %v", assert.AnError)
	})
}

func TestNamedScopesLogger(t *testing.T) {
	l := NewNop()
	named := l.Named("strata")
	assert.NotPanics(t, func() { named.Info("scoped") })
}

func TestFieldLoggerWithDomainFields(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.With().Info("decoded",
			RecordID(42),
			BlockSize(128),
			Stratum(7),
			FoldFactor(2),
			Bool("success", true),
			Err(assert.AnError),
		)
	})
}

func TestDevelopmentLoggerConstructs(t *testing.T) {
	l := NewDevelopment("test")
	assert.NotPanics(t, func() { l.Info("started") })
}
