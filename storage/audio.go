package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrAudioNotRecorded is returned when a paper has never been resolved.
var ErrAudioNotRecorded = errors.New("no audio resolution recorded")

// AudioRecord is the persisted outcome of resolving one paper's audio.
type AudioRecord struct {
	PaperID    string    `json:"paper_id"`
	RunID      string    `json:"run_id"`
	Found      bool      `json:"exists"`
	Filename   string    `json:"filename"`
	PublicPath string    `json:"audio_url,omitempty"`
	Score      int       `json:"score"`
	MatchType  string    `json:"match_type,omitempty"`
	Hash       string    `json:"result_hash"`
	CheckedAt  time.Time `json:"checked_at"`
}

// SaveAudio records a resolution for a paper.
//
// Rescans mostly reproduce the previous answer, so when the latest record for
// the paper carries the same result hash only its run id and check time move
// forward. Returns true when a new row was written.
func (s *PaperStore) SaveAudio(ctx context.Context, rec AudioRecord) (bool, error) {
	rec.Hash = audioHash(rec)
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		rowID    int64
		lastHash string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT rowid, result_hash FROM audio_resolutions
		 WHERE paper_id = ? ORDER BY checked_at DESC, rowid DESC LIMIT 1`,
		rec.PaperID).Scan(&rowID, &lastHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to query latest resolution: %w", err)
	}

	inserted := false
	if err == nil && lastHash == rec.Hash {
		_, err = tx.ExecContext(ctx,
			"UPDATE audio_resolutions SET run_id = ?, checked_at = ? WHERE rowid = ?",
			rec.RunID, rec.CheckedAt.Unix(), rowID)
		if err != nil {
			return false, fmt.Errorf("failed to touch resolution: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO audio_resolutions
			 (paper_id, run_id, found, filename, public_path, score, match_type, result_hash, checked_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.PaperID, rec.RunID, boolToInt(rec.Found), rec.Filename, rec.PublicPath,
			rec.Score, rec.MatchType, rec.Hash, rec.CheckedAt.Unix())
		if err != nil {
			return false, fmt.Errorf("failed to insert resolution: %w", err)
		}
		inserted = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit resolution: %w", err)
	}
	return inserted, nil
}

// LatestAudio returns the most recent resolution recorded for a paper.
func (s *PaperStore) LatestAudio(ctx context.Context, paperID string) (AudioRecord, error) {
	var (
		rec        AudioRecord
		found      int
		publicPath sql.NullString
		matchType  sql.NullString
		checkedAt  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT paper_id, run_id, found, filename, public_path, score, match_type, result_hash, checked_at
		 FROM audio_resolutions WHERE paper_id = ?
		 ORDER BY checked_at DESC, rowid DESC LIMIT 1`,
		paperID).Scan(&rec.PaperID, &rec.RunID, &found, &rec.Filename, &publicPath,
		&rec.Score, &matchType, &rec.Hash, &checkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AudioRecord{}, fmt.Errorf("%w: %s", ErrAudioNotRecorded, paperID)
	}
	if err != nil {
		return AudioRecord{}, fmt.Errorf("failed to query resolution: %w", err)
	}

	rec.Found = found != 0
	rec.PublicPath = publicPath.String
	rec.MatchType = matchType.String
	rec.CheckedAt = time.Unix(checkedAt, 0)
	return rec, nil
}

// audioHash fingerprints the fields that make up a resolution result.
// Run id and check time are excluded.
func audioHash(rec AudioRecord) string {
	d := xxhash.New()
	for _, field := range []string{
		strconv.FormatBool(rec.Found),
		rec.Filename,
		rec.PublicPath,
		strconv.Itoa(rec.Score),
		rec.MatchType,
	} {
		_, _ = d.WriteString(field)
		_, _ = d.Write([]byte{0})
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], d.Sum64())
	return hex.EncodeToString(buf[:])
}
