package ledger

// CheckpointFor builds the checkpoint row for a window, or reports false when
// the window is empty and nothing should be recorded.
func CheckpointFor(stats WindowStats) (CheckpointInput, bool) {
	if stats.Count <= 0 || stats.EndLoadedAt == nil {
		return CheckpointInput{}, false
	}
	start := *stats.EndLoadedAt
	if stats.StartLoadedAt != nil {
		start = *stats.StartLoadedAt
	}
	return CheckpointInput{
		ProcessedCount: stats.Count,
		StartLoadedAt:  start,
		EndLoadedAt:    *stats.EndLoadedAt,
	}, true
}
