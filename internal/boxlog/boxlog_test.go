package boxlog_test

import (
	"testing"

	"github.com/cperrin88/boxkeep/internal/boxlog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	boxlog.Init("not-a-level", true)
	assert.Equal(t, logrus.InfoLevel, boxlog.Get().GetLevel())
}

func TestInitAppliesRequestedLevel(t *testing.T) {
	boxlog.Init("debug", true)
	assert.Equal(t, logrus.DebugLevel, boxlog.Get().GetLevel())
}

func TestGetInitializesLazily(t *testing.T) {
	assert.NotNil(t, boxlog.Get())
}
