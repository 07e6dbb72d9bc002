package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledManagerIsInert(t *testing.T) {
	pm := NewManager(Config{Enabled: false})
	assert.False(t, pm.Enabled())

	bar := pm.CreateBar(10, "Translating", "cues")
	bar.Increment()
	bar.SetCurrent(5)
	bar.SetTotal(20)
	bar.Complete()
	bar.Abort()

	pm.CreateSpinner("Waiting").Complete()
	pm.Wait()
	pm.Shutdown()
}

func TestBarRendersToWriter(t *testing.T) {
	var buf bytes.Buffer
	pm := NewManager(Config{Enabled: true, Writer: &buf})
	assert.True(t, pm.Enabled())

	bar := pm.CreateBar(2, "Translating", "cues")
	bar.Increment()
	bar.Increment()
	pm.Wait()

	assert.Contains(t, buf.String(), "Translating")
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.True(t, ShouldShowProgress(true))
}
