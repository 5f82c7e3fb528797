package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *TrainingStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "training.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTrainingLogRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := &TrainingLog{
		ModelName:  "tfidf_logreg",
		ModelPath:  "model/document_classifier.joblib",
		Accuracy:   0.8,
		TrainSize:  70,
		TestSize:   30,
		ClassCount: 4,
		TrainedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DataPoints: 100,
	}
	newer := &TrainingLog{
		ModelName:     "tfidf_logreg",
		Accuracy:      0.9,
		Precision:     0.85,
		Recall:        0.8,
		F1:            0.82,
		DroppedLabels: map[string]int{"RARE": 1},
		TrainedAt:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveTrainingLog(ctx, older))
	require.NoError(t, store.SaveTrainingLog(ctx, newer))
	assert.NotEmpty(t, older.RunID)
	assert.NotEqual(t, older.RunID, newer.RunID)

	logs, err := store.LoadTrainingLog(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, newer.RunID, logs[0].RunID)
	assert.Equal(t, map[string]int{"RARE": 1}, logs[0].DroppedLabels)
	assert.InDelta(t, 0.82, logs[0].F1, 1e-12)
	assert.Equal(t, 70, logs[1].TrainSize)
	assert.Equal(t, "model/document_classifier.joblib", logs[1].ModelPath)

	limited, err := store.LoadTrainingLog(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSaveTrainingLogFillsTimestamp(t *testing.T) {
	store := openTestStore(t)
	log := &TrainingLog{ModelName: "tfidf_logreg"}
	require.NoError(t, store.SaveTrainingLog(context.Background(), log))
	assert.False(t, log.TrainedAt.IsZero())
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
