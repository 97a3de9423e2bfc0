package telemetry

import "errors"

// Sink receives flushed telemetry windows.
type Sink interface {
	WriteWindow(stats WindowStats, perf PerfStats) error
	WriteBookmark(b Bookmark) error
	Close() error
}

// Sinks fans telemetry out to several sinks.
type Sinks []Sink

func (s Sinks) WriteWindow(stats WindowStats, perf PerfStats) error {
	var errs []error
	for _, sink := range s {
		if err := sink.WriteWindow(stats, perf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s Sinks) WriteBookmark(b Bookmark) error {
	var errs []error
	for _, sink := range s {
		if err := sink.WriteBookmark(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s Sinks) Close() error {
	var errs []error
	for _, sink := range s {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
