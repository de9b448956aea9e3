package pipeline

import (
	"math"

	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/pkg/config"
)

// PlanChunks turns a total duration and silence boundary candidates
// into an ordered list of chunk windows covering [0, totalDuration]
// with no gaps. Ends snap to the candidate nearest the target length
// when one sits inside the snap window, so chunks split on natural
// pauses instead of mid-word.
func PlanChunks(totalDuration float64, boundaries []float64, cfg config.PipelineConfig) []entities.ChunkWindow {
	if totalDuration <= 0 {
		return []entities.ChunkWindow{}
	}
	if len(boundaries) == 0 {
		return FixedWindows(totalDuration, cfg)
	}

	var windows []entities.ChunkWindow
	currentStart := 0.0

	for {
		targetEnd := math.Min(currentStart+cfg.ChunkTargetSec, totalDuration)

		chosenEnd := targetEnd
		natural := false
		bestDist := math.Inf(1)
		for _, candidate := range boundaries {
			if math.Abs(candidate-targetEnd) > cfg.SnapWindowSec {
				continue
			}
			if candidate < currentStart+cfg.MinHeadroomSec {
				continue
			}
			// Snapping into the trailing half second just produces a
			// useless sliver chunk
			if candidate > totalDuration-0.5 {
				continue
			}
			if dist := math.Abs(candidate - targetEnd); dist < bestDist {
				bestDist = dist
				chosenEnd = candidate
				natural = true
			}
		}

		if chosenEnd < currentStart+cfg.MinChunkSec {
			chosenEnd = math.Min(currentStart+cfg.MinChunkSec, totalDuration)
			natural = false
		}

		windows = append(windows, entities.ChunkWindow{
			Start:   currentStart,
			End:     chosenEnd,
			Natural: natural,
		})

		if chosenEnd >= totalDuration {
			break
		}

		currentStart = math.Max(chosenEnd-cfg.OverlapSec, 0)
	}

	return windows
}

// FixedWindows is the fallback plan when boundary detection produced
// nothing: fixed-size windows of the target length with a small overlap
// on all but the last window
func FixedWindows(totalDuration float64, cfg config.PipelineConfig) []entities.ChunkWindow {
	if totalDuration <= 0 {
		return []entities.ChunkWindow{}
	}

	var windows []entities.ChunkWindow
	currentStart := 0.0

	for currentStart < totalDuration {
		end := math.Min(currentStart+cfg.ChunkTargetSec, totalDuration)
		windows = append(windows, entities.ChunkWindow{
			Start: currentStart,
			End:   end,
		})
		if end >= totalDuration {
			break
		}
		currentStart = math.Max(end-cfg.OverlapSec, 0)
	}

	return windows
}
