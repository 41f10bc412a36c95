// ABOUTME: Tests for the candidate pipeline repository
// ABOUTME: Covers per-stage positions, moves, stage patches, and removal reindexing
package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpdv/redpdv/models"
)

func seedCandidates(t *testing.T, f *fixture) (*Candidates, map[string]string) {
	t.Helper()
	r := NewCandidates(f.store, f.backend, f.queue, f.notes)
	ids := map[string]string{}
	for _, name := range []string{"a", "b", "c"} {
		c := r.Add(context.Background(), map[string]interface{}{"name": name})
		ids[name] = c.ID
	}
	for _, name := range []string{"d", "e"} {
		c := r.Add(context.Background(), map[string]interface{}{"name": name, "stage": models.StageContacted})
		ids[name] = c.ID
	}
	return r, ids
}

func stageNames(cands []models.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func requireContiguous(t *testing.T, cands []models.Candidate) {
	t.Helper()
	for i, c := range cands {
		require.Equal(t, i, c.Position, "stage %s name %s", c.Stage, c.Name)
	}
}

func TestAddCandidateAppendsToStage(t *testing.T) {
	f := newFixture(t)
	r, _ := seedCandidates(t, f)

	newStage := r.ByStage(models.StageNew)
	assert.Equal(t, []string{"a", "b", "c"}, stageNames(newStage))
	requireContiguous(t, newStage)

	contacted := r.ByStage(models.StageContacted)
	assert.Equal(t, []string{"d", "e"}, stageNames(contacted))
	requireContiguous(t, contacted)
}

func TestMoveCandidateAcrossStages(t *testing.T) {
	f := newFixture(t)
	r, ids := seedCandidates(t, f)

	require.True(t, r.Move(context.Background(), ids["a"], models.StageContacted, 1))

	assert.Equal(t, []string{"b", "c"}, stageNames(r.ByStage(models.StageNew)))
	assert.Equal(t, []string{"d", "a", "e"}, stageNames(r.ByStage(models.StageContacted)))
	requireContiguous(t, r.ByStage(models.StageNew))
	requireContiguous(t, r.ByStage(models.StageContacted))
}

func TestMoveCandidateClampsPosition(t *testing.T) {
	f := newFixture(t)
	r, ids := seedCandidates(t, f)

	require.True(t, r.Move(context.Background(), ids["b"], models.StageContacted, 99))
	assert.Equal(t, []string{"d", "e", "b"}, stageNames(r.ByStage(models.StageContacted)))
}

func TestMoveCandidateUnknownStage(t *testing.T) {
	f := newFixture(t)
	r, ids := seedCandidates(t, f)

	assert.False(t, r.Move(context.Background(), ids["a"], "limbo", 0))
	assert.False(t, r.Move(context.Background(), "missing", models.StageContacted, 0))
}

func TestUpdateCandidateStagePatchReindexes(t *testing.T) {
	f := newFixture(t)
	r, ids := seedCandidates(t, f)

	// Patching the stage directly behaves like a move to the end of the
	// target stage, and the vacated stage closes its gap.
	c, ok := r.Update(context.Background(), ids["b"], map[string]interface{}{"stage": models.StageEvaluation})
	require.True(t, ok)
	assert.Equal(t, models.StageEvaluation, c.Stage)
	assert.Equal(t, 0, c.Position)

	assert.Equal(t, []string{"a", "c"}, stageNames(r.ByStage(models.StageNew)))
	requireContiguous(t, r.ByStage(models.StageNew))
}

func TestDeleteCandidateReindexes(t *testing.T) {
	f := newFixture(t)
	r, ids := seedCandidates(t, f)

	require.True(t, r.Delete(context.Background(), ids["b"]))
	assert.Equal(t, []string{"a", "c"}, stageNames(r.ByStage(models.StageNew)))
	requireContiguous(t, r.ByStage(models.StageNew))
}

func TestCandidatesReloadRepairsPositions(t *testing.T) {
	f := newFixture(t)
	r, _ := seedCandidates(t, f)
	_ = r

	again := NewCandidates(f.store, f.backend, f.queue, f.notes)
	for _, stage := range models.Stages {
		requireContiguous(t, again.ByStage(stage))
	}
}
