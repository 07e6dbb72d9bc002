// Package progress renders terminal progress for long CLI operations.
package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type Config struct {
	Enabled bool
	Writer  io.Writer
}

type Manager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
}

// Bar is a counting bar. A disabled Bar accepts every call and draws nothing.
type Bar struct {
	bar     *mpb.Bar
	enabled bool
}

func NewManager(config Config) *Manager {
	if !config.Enabled {
		return &Manager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithWaitGroup(&sync.WaitGroup{}),
	)

	return &Manager{
		container: container,
		enabled:   true,
	}
}

func (pm *Manager) Enabled() bool {
	return pm.enabled && pm.container != nil
}

// CreateBar adds a bar counting total items named unit, e.g. "cues".
func (pm *Manager) CreateBar(total int, description, unit string) *Bar {
	if !pm.Enabled() {
		return &Bar{enabled: false}
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar := pm.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " ✓ ",
			),
			decor.OnComplete(
				decor.EwmaSpeed(0, "%.1f "+unit+"/s", 30, decor.WCSyncSpace), "",
			),
		),
	)

	return &Bar{
		bar:     bar,
		enabled: true,
	}
}

// CreateSpinner adds an open-ended indicator for work without a known size.
func (pm *Manager) CreateSpinner(description string) *Bar {
	if !pm.Enabled() {
		return &Bar{enabled: false}
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar := pm.container.New(0,
		mpb.SpinnerStyle(),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Name(""), " ✓"),
		),
	)

	return &Bar{
		bar:     bar,
		enabled: true,
	}
}

func (pb *Bar) Increment() {
	if pb.enabled && pb.bar != nil {
		pb.bar.Increment()
	}
}

// SetCurrent moves the bar to n of its total.
func (pb *Bar) SetCurrent(n int) {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetCurrent(int64(n))
	}
}

func (pb *Bar) SetTotal(total int64) {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetTotal(total, false)
	}
}

func (pb *Bar) Complete() {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetTotal(-1, true)
	}
}

// Abort removes the bar from the display.
func (pb *Bar) Abort() {
	if pb.enabled && pb.bar != nil {
		pb.bar.Abort(true)
	}
}

func (pm *Manager) Wait() {
	if pm.Enabled() {
		pm.container.Wait()
	}
}

func (pm *Manager) Shutdown() {
	if pm.Enabled() {
		pm.container.Shutdown()
	}
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr)
}
