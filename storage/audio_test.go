package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/examvault/model"
)

func TestSaveAudioDedupesUnchangedResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := addListeningPaper(t, store, model.Descriptor{Category: "CET-4", Year: 2021, Month: 6})

	first := AudioRecord{
		PaperID:    id,
		RunID:      "run-1",
		Found:      true,
		Filename:   "cet4_2021_06_1.mp3",
		PublicPath: "/四级听力/cet4_2021_06_1.mp3",
		Score:      18,
		MatchType:  "primary",
		CheckedAt:  time.Unix(1000, 0),
	}
	inserted, err := store.SaveAudio(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	again := first
	again.RunID = "run-2"
	again.CheckedAt = time.Unix(2000, 0)
	inserted, err = store.SaveAudio(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)

	latest, err := store.LatestAudio(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.RunID)
	assert.Equal(t, int64(2000), latest.CheckedAt.Unix())

	var rows int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM audio_resolutions").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSaveAudioRecordsChangedResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := addListeningPaper(t, store, model.Descriptor{Category: "CET-6", Year: 2020, Month: 12})

	_, err := store.SaveAudio(ctx, AudioRecord{
		PaperID: id, RunID: "run-1", Filename: "cet6_2020_12_1.mp3", CheckedAt: time.Unix(1000, 0),
	})
	require.NoError(t, err)

	inserted, err := store.SaveAudio(ctx, AudioRecord{
		PaperID: id, RunID: "run-2", Found: true, Filename: "cet6_2020_12_1.mp3",
		PublicPath: "/六级听力/cet6_2020_12_1.mp3", Score: 18, MatchType: "primary",
		CheckedAt: time.Unix(2000, 0),
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	latest, err := store.LatestAudio(ctx, id)
	require.NoError(t, err)
	assert.True(t, latest.Found)
	assert.Equal(t, "/六级听力/cet6_2020_12_1.mp3", latest.PublicPath)
	assert.Equal(t, "primary", latest.MatchType)
	assert.NotEmpty(t, latest.Hash)
}

func TestLatestAudioNotRecorded(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LatestAudio(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrAudioNotRecorded))
}

func TestAudioHashIgnoresRunAndTime(t *testing.T) {
	a := AudioRecord{Filename: "x.mp3", RunID: "a", CheckedAt: time.Unix(1, 0)}
	b := AudioRecord{Filename: "x.mp3", RunID: "b", CheckedAt: time.Unix(2, 0)}
	assert.Equal(t, audioHash(a), audioHash(b))

	b.Found = true
	assert.NotEqual(t, audioHash(a), audioHash(b))
}
