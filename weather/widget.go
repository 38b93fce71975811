package weather

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"start-page/domain"
)

// Fetcher returns the current weather.
type Fetcher interface {
	Current(ctx context.Context) (Report, error)
}

// View is what the weather card renders.
type View struct {
	Report    *Report          `json:"report,omitempty"`
	Error     string           `json:"error,omitempty"`
	Loading   bool             `json:"loading"`
	Condition domain.Condition `json:"condition"`
}

// Widget keeps the last weather fetch and drives the shared State.
type Widget struct {
	fetcher Fetcher
	state   *State
	logger  *log.Logger

	mu      sync.Mutex
	report  *Report
	err     string
	loading bool
}

// NewWidget creates a Widget writing its classification to state.
func NewWidget(fetcher Fetcher, state *State, logger *log.Logger) *Widget {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Widget{fetcher: fetcher, state: state, logger: logger}
}

// Refresh fetches the weather. On success the condition is written to the
// State; on failure the error is kept for display and the State is untouched.
func (w *Widget) Refresh(ctx context.Context) error {
	w.mu.Lock()
	w.loading = true
	w.mu.Unlock()

	report, err := w.fetcher.Current(ctx)

	w.mu.Lock()
	w.loading = false
	if err != nil {
		w.err = err.Error()
		w.mu.Unlock()
		w.logger.WithError(err).Warn("weather fetch failed")
		return err
	}
	w.report = &report
	w.err = ""
	w.mu.Unlock()

	c := domain.Classify(report.Code)
	w.state.Set(c)
	w.logger.WithFields(log.Fields{"code": report.Code, "condition": c, "temp": report.Temp}).Debug("weather refreshed")
	return nil
}

// Override sets the theme condition by hand, independent of any fetch.
func (w *Widget) Override(c domain.Condition) {
	w.state.Set(c)
	w.logger.WithField("condition", c).Info("weather condition overridden")
}

// View returns the current card contents. A widget that has neither a report
// nor an error is still loading.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		Error:     w.err,
		Loading:   w.loading || (w.report == nil && w.err == ""),
		Condition: w.state.Condition(),
	}
	if w.report != nil {
		r := *w.report
		v.Report = &r
	}
	return v
}

// Run refreshes every interval until ctx is done. Failures are kept in the
// view and do not stop the loop.
func (w *Widget) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = w.Refresh(ctx)
		}
	}
}
