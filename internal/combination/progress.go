package combination

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Progress is an interface for tracking progress of a search
type Progress interface {
	// Add records n more explored nodes
	Add(n int) error
	// Close cleans up any resources used by the progress tracker
	Close()
}

// NoopProgress is a progress tracker that does nothing
type NoopProgress struct{}

func (p *NoopProgress) Add(int) error { return nil }
func (p *NoopProgress) Close()        {}

// NewNoopProgress creates a new no-op progress tracker
func NewNoopProgress() *NoopProgress {
	return &NoopProgress{}
}

// SpinnerProgress wraps an indeterminate progressbar.ProgressBar, since the
// size of the search space isn't known up front
type SpinnerProgress struct {
	bar *progressbar.ProgressBar
}

func (p *SpinnerProgress) Add(n int) error {
	return p.bar.Add(n)
}

func (p *SpinnerProgress) Close() {
	_ = p.bar.Finish()
	fmt.Fprint(os.Stderr, "\r\033[K")
}

// NewSpinnerProgress creates a spinner that counts explored nodes on stderr
func NewSpinnerProgress() *SpinnerProgress {
	return &SpinnerProgress{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Searching combinations"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("nodes"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
	}
}
