package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNetworkFormed BookmarkType = "network_formed"
	BookmarkTrailCollapse BookmarkType = "trail_collapse"
	BookmarkFoodDepleted  BookmarkType = "food_depleted"
	BookmarkSteadyState   BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Step        int64        `csv:"step"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"step", b.Step,
		"description", b.Description,
	)
}

// BookmarkDetector watches successive windows for notable changes in the
// trail network.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	coverageThreshold float64 // coverage fraction counted as a formed network

	networkFormed bool
	peakMass      float64
	steadyFired   bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, coverageThreshold float64) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady state detection
	}
	if coverageThreshold <= 0 {
		coverageThreshold = 0.05
	}
	return &BookmarkDetector{
		history:           make([]WindowStats, historySize),
		historySize:       historySize,
		coverageThreshold: coverageThreshold,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkNetworkFormed(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTrailCollapse(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFoodDepleted(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSteadyState(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	if stats.TrailMassTotal > bd.peakMass {
		bd.peakMass = stats.TrailMassTotal
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	i := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[i], true
}

func (bd *BookmarkDetector) checkNetworkFormed(stats WindowStats) *Bookmark {
	if bd.networkFormed || stats.Coverage < bd.coverageThreshold {
		return nil
	}
	bd.networkFormed = true
	return &Bookmark{
		Type:        BookmarkNetworkFormed,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("coverage reached %.1f%%", stats.Coverage*100),
	}
}

// checkTrailCollapse fires when mass falls below half the peak seen so far.
func (bd *BookmarkDetector) checkTrailCollapse(stats WindowStats) *Bookmark {
	prev, ok := bd.previous()
	if !ok || bd.peakMass <= 0 {
		return nil
	}
	half := bd.peakMass / 2
	if prev.TrailMassTotal >= half && stats.TrailMassTotal < half {
		return &Bookmark{
			Type:        BookmarkTrailCollapse,
			Step:        stats.WindowEndStep,
			Description: fmt.Sprintf("trail mass %.0f fell below half of peak %.0f", stats.TrailMassTotal, bd.peakMass),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFoodDepleted(stats WindowStats) *Bookmark {
	prev, ok := bd.previous()
	if !ok || prev.FoodMass <= 0 || stats.FoodMass > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFoodDepleted,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("all food eaten (%.2f in last window)", stats.FoodEaten),
	}
}

// checkSteadyState fires once when coverage has varied by less than 2% of its
// mean across a full history.
func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	if bd.steadyFired || !bd.historyFull {
		return nil
	}
	history := bd.getHistory()
	var sum float64
	for _, h := range history {
		sum += h.Coverage
	}
	mean := sum / float64(len(history))
	if mean <= 0 {
		return nil
	}
	var maxDev float64
	for _, h := range history {
		maxDev = math.Max(maxDev, math.Abs(h.Coverage-mean))
	}
	maxDev = math.Max(maxDev, math.Abs(stats.Coverage-mean))
	if maxDev/mean > 0.02 {
		return nil
	}
	bd.steadyFired = true
	return &Bookmark{
		Type:        BookmarkSteadyState,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("coverage steady at %.1f%% over %d windows", mean*100, len(history)+1),
	}
}
