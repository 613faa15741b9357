// Command execution for CLI commands.
//
// Information Hiding:
// - Settings/logger/component setup hidden
// - Output formatting hidden (JSON documents on Options.Out)

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richinex/examvault/config"
	"github.com/richinex/examvault/fragments"
	"github.com/richinex/examvault/internal/index"
	"github.com/richinex/examvault/internal/logging"
	"github.com/richinex/examvault/model"
	"github.com/richinex/examvault/resolver"
	"github.com/richinex/examvault/storage"
)

// Options holds CLI execution options.
// Empty fields keep the value from configuration.
type Options struct {
	ConfigPath string
	LogLevel   string
	DataDir    string
	MediaDirs  []string
	DBPath     string
	Out        io.Writer
	Logger     *zap.Logger // overrides the logger built from configuration
}

// env is the wired set of components for one command.
type env struct {
	settings config.Settings
	logger   *zap.Logger
	out      io.Writer
}

func setup(opts Options) (*env, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		settings.Log.Level = opts.LogLevel
	}
	if opts.DataDir != "" {
		settings.Dataset.Root = opts.DataDir
	}
	if len(opts.MediaDirs) > 0 {
		settings.Media.BaseDirs = opts.MediaDirs
	}
	if opts.DBPath != "" {
		settings.Catalog.Path = opts.DBPath
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = logging.New(settings.Log.Level)
		if err != nil {
			return nil, err
		}
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &env{settings: settings, logger: logger, out: out}, nil
}

func (e *env) close() {
	_ = e.logger.Sync()
}

func (e *env) resolver() (*resolver.Resolver, error) {
	return resolver.New(e.settings.Media)
}

func (e *env) aggregator() *fragments.Aggregator {
	return fragments.New(e.settings.Dataset, e.logger)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Resolve locates the audio asset for one paper. When paperID is set the
// descriptor is loaded from the catalog database instead.
func Resolve(ctx context.Context, d model.Descriptor, paperID string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	if paperID != "" {
		store, err := storage.OpenSqlite(e.settings.Catalog.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		d, err = store.GetPaper(ctx, paperID)
		if err != nil {
			return err
		}
	}

	r, err := e.resolver()
	if err != nil {
		return err
	}

	result := r.Resolve(d)
	e.logger.Debug("Resolved audio",
		zap.String("paper", d.String()),
		zap.Bool("found", result.Found),
		zap.Int("score", result.Score),
		zap.Int("probes", result.Probes))

	return writeJSON(e.out, struct {
		Paper model.Descriptor      `json:"paper"`
		Audio resolver.MatchResult `json:"audio_info"`
	}{d, result})
}

// Rescan resolves audio for every listening paper in the catalog database
// and records each result against its paper.
func Rescan(ctx context.Context, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	store, err := storage.OpenSqlite(e.settings.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	papers, err := store.ListListeningPapers(ctx)
	if err != nil {
		return err
	}

	r, err := e.resolver()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run_id", runID))
	logger.Info("Audio rescan started", zap.Int("papers", len(papers)))
	start := time.Now()

	report := r.ResolveAll(papers)
	changed := 0
	for _, res := range report.Results {
		if !res.Result.Found {
			logger.Warn("Audio not found",
				zap.String("paper", res.Descriptor.String()),
				zap.String("expected", res.Result.Filename))
		}
		inserted, err := store.SaveAudio(ctx, storage.AudioRecord{
			PaperID:    res.Descriptor.ID,
			RunID:      runID,
			Found:      res.Result.Found,
			Filename:   res.Result.Filename,
			PublicPath: res.Result.PublicPath,
			Score:      res.Result.Score,
			MatchType:  string(res.Result.Class),
		})
		if err != nil {
			return err
		}
		if inserted {
			changed++
		}
	}

	logger.Info("Audio rescan finished",
		zap.Int("found", report.Found),
		zap.Int("total", report.Total),
		zap.Int("primary", report.Primary),
		zap.Int("secondary", report.Secondary),
		zap.Int("changed", changed),
		zap.Duration("elapsed", time.Since(start)))

	return writeJSON(e.out, struct {
		RunID   string `json:"run_id"`
		Changed int    `json:"changed"`
		resolver.BatchReport
	}{runID, changed, report})
}

// CheckAudio reports where a literal audio filename lives.
func CheckAudio(filename string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	r, err := e.resolver()
	if err != nil {
		return err
	}
	return writeJSON(e.out, r.Check(filename))
}

// Papers lists logical papers in the dataset, optionally filtered by id prefix.
// With watch set, the listing is printed again whenever the dataset changes,
// until ctx is cancelled.
func Papers(ctx context.Context, prefix string, watch bool, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	agg := e.aggregator()
	root := e.settings.Dataset.Root

	list := func() error {
		papers, err := agg.List(root)
		if err != nil {
			return err
		}
		if prefix != "" {
			papers = index.Build(papers).WithPrefix(prefix)
		}
		if papers == nil {
			papers = []fragments.PaperSummary{}
		}
		e.logger.Info("Listed papers", zap.String("root", root), zap.Int("papers", len(papers)))
		return writeJSON(e.out, papers)
	}

	if err := list(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	return watchDataset(ctx, root, e.logger, func() {
		if err := list(); err != nil {
			e.logger.Warn("Listing failed", zap.Error(err))
		}
	})
}

// Paper prints one merged paper.
func Paper(id string, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	agg := e.aggregator()
	root := e.settings.Dataset.Root

	paper, err := agg.Get(root, id)
	if errors.Is(err, fragments.ErrPaperNotFound) {
		if papers, listErr := agg.List(root); listErr == nil {
			if near, ok := index.Build(papers).LongestPrefix(id); ok {
				return fmt.Errorf("%w (closest paper: %s)", err, near.ID)
			}
		}
	}
	if err != nil {
		return err
	}

	e.logger.Info("Loaded paper",
		zap.String("id", id),
		zap.Int("questions", paper.ItemCount),
		zap.Int("files", paper.FileCount))
	return writeJSON(e.out, paper)
}

// Status prints per-year fragment counts and paper totals.
func Status(opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.close()

	status, err := e.aggregator().Status(e.settings.Dataset.Root)
	if err != nil {
		return err
	}
	return writeJSON(e.out, status)
}
