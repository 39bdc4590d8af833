package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, b := range bookmarks {
		if b.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstLeafAndFlowerOnce(t *testing.T) {
	bd := NewBookmarkDetector(5)

	if got := bd.Check(CycleStats{Cycle: 1, NewShootNodes: 1}); len(got) != 0 {
		t.Fatalf("expected no bookmarks, got %v", got)
	}

	got := bd.Check(CycleStats{Cycle: 2, Leaves: 1, NewShootNodes: 1})
	if !hasBookmark(got, BookmarkFirstLeaf) {
		t.Error("expected first_leaf bookmark")
	}
	got = bd.Check(CycleStats{Cycle: 3, Leaves: 2, Flowers: 1, NewShootNodes: 1})
	if hasBookmark(got, BookmarkFirstLeaf) {
		t.Error("first_leaf reported twice")
	}
	if !hasBookmark(got, BookmarkFirstFlower) {
		t.Error("expected first_flower bookmark")
	}
	got = bd.Check(CycleStats{Cycle: 4, Leaves: 2, Flowers: 2, NewShootNodes: 1})
	if hasBookmark(got, BookmarkFirstFlower) {
		t.Error("first_flower reported twice")
	}
}

func TestBookmarkDetector_GrowthSpurt(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for c := 1; c <= 5; c++ {
		bd.Check(CycleStats{Cycle: c, NewShootNodes: 1, NewRootNodes: 1})
	}

	got := bd.Check(CycleStats{Cycle: 6, NewShootNodes: 4, NewRootNodes: 2})
	if !hasBookmark(got, BookmarkGrowthSpurt) {
		t.Error("expected growth_spurt bookmark")
	}

	got = bd.Check(CycleStats{Cycle: 7, NewShootNodes: 2, NewRootNodes: 1})
	if hasBookmark(got, BookmarkGrowthSpurt) {
		t.Error("ordinary growth reported as a spurt")
	}
}

func TestBookmarkDetector_GrowthStall(t *testing.T) {
	bd := NewBookmarkDetector(5)

	bd.Check(CycleStats{Cycle: 1, NewShootNodes: 2})
	got := bd.Check(CycleStats{Cycle: 2})
	if !hasBookmark(got, BookmarkGrowthStall) {
		t.Fatal("expected growth_stall bookmark")
	}
	if got := bd.Check(CycleStats{Cycle: 3}); hasBookmark(got, BookmarkGrowthStall) {
		t.Error("stall reported again while still stalled")
	}

	bd.Check(CycleStats{Cycle: 4, NewRootNodes: 1})
	if got := bd.Check(CycleStats{Cycle: 5}); !hasBookmark(got, BookmarkGrowthStall) {
		t.Error("expected a new stall after growth resumed")
	}
}

func TestBookmarkDetector_ShootStopped(t *testing.T) {
	bd := NewBookmarkDetector(5)

	if got := bd.Check(CycleStats{Cycle: 1, ShootNodes: 1, ShootTips: 0}); hasBookmark(got, BookmarkShootStopped) {
		t.Error("a lone seed is not a stopped shoot")
	}
	got := bd.Check(CycleStats{Cycle: 2, ShootNodes: 6, ShootTips: 0, Height: 4})
	if !hasBookmark(got, BookmarkShootStopped) {
		t.Error("expected shoot_stopped bookmark")
	}
}
