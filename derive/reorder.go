// ABOUTME: Candidate pipeline ordering within stages
// ABOUTME: Keeps positions contiguous from zero after every move, insert, or removal
package derive

import (
	"sort"

	"github.com/redpdv/redpdv/models"
)

// stageOrder returns the indexes of candidates in the given stage, sorted
// by stored position. Candidates with equal or missing positions keep
// their original relative order (stable sort by slice order).
func stageOrder(cands []models.Candidate, stage string) []int {
	var idx []int
	for i := range cands {
		if cands[i].Stage == stage {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return cands[idx[a]].Position < cands[idx[b]].Position
	})
	return idx
}

// ReindexStage rewrites the positions of every candidate in stage to a
// contiguous 0-based sequence, preserving current order.
func ReindexStage(cands []models.Candidate, stage string) {
	for pos, i := range stageOrder(cands, stage) {
		cands[i].Position = pos
	}
}

// MoveCandidate moves the candidate with the given id to toStage at
// toPos, reindexing both the source and target stages. toPos is clamped
// to [0, len(target stage)]. Unknown ids leave the slice untouched.
func MoveCandidate(cands []models.Candidate, id, toStage string, toPos int) {
	src := -1
	for i := range cands {
		if cands[i].ID == id {
			src = i
			break
		}
	}
	if src == -1 {
		return
	}

	fromStage := cands[src].Stage

	// Order of the target stage without the moving candidate.
	var target []int
	for _, i := range stageOrder(cands, toStage) {
		if i != src {
			target = append(target, i)
		}
	}

	if toPos < 0 {
		toPos = 0
	}
	if toPos > len(target) {
		toPos = len(target)
	}

	cands[src].Stage = toStage
	for pos, i := range target {
		if pos < toPos {
			cands[i].Position = pos
		} else {
			cands[i].Position = pos + 1
		}
	}
	cands[src].Position = toPos

	if fromStage != toStage {
		ReindexStage(cands, fromStage)
	}
}

// RemoveCandidate deletes the candidate with the given id and closes the
// position gap left in its stage. Returns the resulting slice.
func RemoveCandidate(cands []models.Candidate, id string) []models.Candidate {
	out := cands[:0]
	stage := ""
	for _, c := range cands {
		if c.ID == id {
			stage = c.Stage
			continue
		}
		out = append(out, c)
	}
	if stage != "" {
		ReindexStage(out, stage)
	}
	return out
}

// NextPosition returns the append position for a new candidate in stage.
func NextPosition(cands []models.Candidate, stage string) int {
	return len(stageOrder(cands, stage))
}
