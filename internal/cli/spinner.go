package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// exportSpinner animates on one terminal line while an export runs and shows
// the percentage reported by the pipeline.
type exportSpinner struct {
	w     io.Writer
	label string
	tick  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	start  sync.Once
	stop   sync.Once

	mu      sync.Mutex
	percent int
	width   int
}

// newExportSpinner creates a spinner writing to w. It stops drawing when ctx
// is cancelled.
func newExportSpinner(ctx context.Context, w io.Writer, label string) *exportSpinner {
	ctx, cancel := context.WithCancel(ctx)
	return &exportSpinner{
		w:      w,
		label:  label,
		tick:   80 * time.Millisecond,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start draws frames until Stop is called or the context ends.
func (s *exportSpinner) Start() {
	s.start.Do(func() { go s.run() })
}

func (s *exportSpinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

// Report records the export's progress. It matches pipeline.ProgressFunc.
func (s *exportSpinner) Report(pct int) {
	pct = max(0, min(pct, 100))
	s.mu.Lock()
	s.percent = pct
	s.mu.Unlock()
}

// line renders the spinner text for frame.
func (s *exportSpinner) line(frame string) string {
	s.mu.Lock()
	pct := s.percent
	s.mu.Unlock()
	return fmt.Sprintf("%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.label), fmt.Sprintf("%3d%%", pct))
}

func (s *exportSpinner) draw(frame string) {
	text := s.line(frame)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(text))
	fmt.Fprintf(s.w, "\r%s", text)
}

func (s *exportSpinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Stop ends the animation and clears the line. Further calls do nothing.
func (s *exportSpinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		s.start.Do(func() { close(s.done) })
		<-s.done
	})
}

// Succeed stops the spinner and prints msg as a success line.
func (s *exportSpinner) Succeed(msg string) {
	s.Stop()
	printSuccess("%s", msg)
}

// Fail stops the spinner and prints msg as an error line.
func (s *exportSpinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
