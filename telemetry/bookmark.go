package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstLeaf    BookmarkType = "first_leaf"
	BookmarkFirstFlower  BookmarkType = "first_flower"
	BookmarkGrowthSpurt  BookmarkType = "growth_spurt"
	BookmarkGrowthStall  BookmarkType = "growth_stall"
	BookmarkShootStopped BookmarkType = "shoot_stopped"
)

// Bookmark marks a notable cycle in a plant's growth.
type Bookmark struct {
	Type        BookmarkType `json:"type"`
	Cycle       int          `json:"cycle"`
	Description string       `json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"cycle", b.Cycle,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable cycles from the stream of cycle stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []CycleStats
	historySize int
	historyIdx  int
	historyFull bool

	// One-shot events already reported
	sawLeaf, sawFlower, sawShootStop bool

	stalled bool // inside a run of cycles without new nodes
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]CycleStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats CycleStats) []Bookmark {
	var bookmarks []Bookmark

	if !bd.sawLeaf && stats.Leaves > 0 {
		bd.sawLeaf = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFirstLeaf,
			Cycle:       stats.Cycle,
			Description: fmt.Sprintf("First leaf at height %.1f", stats.Height),
		})
	}

	if !bd.sawFlower && stats.Flowers > 0 {
		bd.sawFlower = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFirstFlower,
			Cycle:       stats.Cycle,
			Description: fmt.Sprintf("%d flower(s) opened", stats.Flowers),
		})
	}

	if b := bd.checkGrowthSpurt(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkGrowthStall(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if !bd.sawShootStop && stats.ShootNodes > 1 && stats.ShootTips == 0 {
		bd.sawShootStop = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkShootStopped,
			Cycle:       stats.Cycle,
			Description: fmt.Sprintf("All shoot tips terminated at height %.1f", stats.Height),
		})
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats CycleStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []CycleStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func newNodes(s CycleStats) int {
	return s.NewShootNodes + s.NewRootNodes
}

// checkGrowthSpurt fires when a cycle adds more than twice the rolling
// average of new nodes.
func (bd *BookmarkDetector) checkGrowthSpurt(stats CycleStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += newNodes(h)
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	current := float64(newNodes(stats))
	if current > avg*2.0 && newNodes(stats) >= 4 {
		return &Bookmark{
			Type:        BookmarkGrowthSpurt,
			Cycle:       stats.Cycle,
			Description: fmt.Sprintf("%d new nodes is %.1fx average (%.1f)", newNodes(stats), current/avg, avg),
		}
	}
	return nil
}

// checkGrowthStall fires once when growth stops after the plant had been
// adding nodes, and re-arms when growth resumes.
func (bd *BookmarkDetector) checkGrowthStall(stats CycleStats) *Bookmark {
	if newNodes(stats) > 0 {
		bd.stalled = false
		return nil
	}
	history := bd.getHistory()
	if bd.stalled || len(history) == 0 || newNodes(history[(bd.historyIdx+bd.historySize-1)%bd.historySize]) == 0 {
		return nil
	}

	bd.stalled = true
	return &Bookmark{
		Type:        BookmarkGrowthStall,
		Cycle:       stats.Cycle,
		Description: fmt.Sprintf("No new nodes; %d shoot and %d root tips still growing", stats.ShootTips, stats.RootTips),
	}
}
