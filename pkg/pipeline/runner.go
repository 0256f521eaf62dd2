package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cobotgen/pkg/cache"
	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/constraint"
	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/negotiate"
	"github.com/matzehuels/cobotgen/pkg/observability"
	"github.com/matzehuels/cobotgen/pkg/render"
	"github.com/matzehuels/cobotgen/pkg/render/schematic"
	"github.com/matzehuels/cobotgen/pkg/runlog"
	"github.com/matzehuels/cobotgen/pkg/sampler"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// Runner encapsulates pipeline execution with frame caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Each Execute call builds its own scene, sampler,
// and negotiator from the options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete negotiate → render → log loop for every
// requested image. Per-image failures (exhaustion, render errors) are
// recorded and the run continues; only configuration and wiring failures
// abort.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	cfg := opts.Config

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	sc, sceneData, err := r.loadScene(opts)
	if err != nil {
		return nil, err
	}
	sc.ApplyCategories(cfg.Labels.Categories)

	rig, err := sampler.NewRig(sc)
	if err != nil {
		return nil, err
	}
	evaluator, err := buildEvaluator(cfg, sc)
	if err != nil {
		return nil, err
	}

	s := sampler.New(cfg.Images.Seed)
	negotiator, err := negotiate.New(
		&candidateSource{sampler: s, rig: rig, cfg: cfg},
		&sceneJudge{scene: sc, evaluator: evaluator},
		cfg.Images.MaxAttempts,
	)
	if err != nil {
		return nil, err
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer, err = schematic.New(cfg.Images.OutputDir,
			schematic.WithSize(cfg.Camera.ImageSize[0], cfg.Camera.ImageSize[1]))
		if err != nil {
			return nil, err
		}
	}

	logger.Info("loaded scene",
		"scene", sc.Name,
		"entities", len(sc.Entities()),
		"seed", cfg.Images.Seed,
		"run_id", runID)

	logPath := filepath.Join(cfg.Images.OutputDir, config.DefaultLogName)
	startIndex := 0
	if !opts.SkipExport {
		startIndex, err = runlog.NextIndex(logPath)
		if err != nil {
			return nil, err
		}
	}

	// Frame provenance: scene identity plus the full configuration, so any
	// change that could alter sampling invalidates cached frames.
	cfgJSON, _ := json.Marshal(cfg)
	provenance := r.Keyer.SceneKey(cfg.Scene.Source, sceneData) + ":" + cache.Hash(cfgJSON)

	logbook := runlog.NewLogger()
	result := &Result{RunID: runID}
	start := time.Now()

	for i := range cfg.Images.Count {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "run canceled at image %d", i)
		}
		index := startIndex + i
		imageStart := time.Now()
		observability.Pipeline().OnImageStart(ctx, index)

		outcome, err := negotiator.Resolve()
		if err != nil {
			return nil, err
		}
		result.Stats.TotalAttempts += outcome.AttemptCount()
		for _, a := range outcome.Attempts {
			observability.Pipeline().OnAttempt(ctx, index, a.Number,
				a.Evaluation.Verdict.String(), a.Evaluation.MinDistance)
		}

		rec := runlog.ImageRecord{
			Index:     index,
			Name:      render.ImageName(index),
			RunID:     runID,
			Attempts:  outcome.AttemptCount(),
			CreatedAt: time.Now().UTC(),
		}

		switch outcome.State {
		case negotiate.StateExhausted:
			last := outcome.Attempts[len(outcome.Attempts)-1].Evaluation
			rec.State = runlog.StateExhausted
			rec.Verdict = constraint.Violation.String()
			rec.MinDistance = last.MinDistance
			rec.ViolatingPair = last.ViolatingPair
			result.Stats.Exhausted++
			logger.Warn("sampling exhausted",
				"image", rec.Name,
				"attempts", rec.Attempts,
				"violating_pair", rec.ViolatingPair)

		case negotiate.StateAccepted:
			eval := outcome.Accepted.Evaluation
			rec.Verdict = constraint.Safe.String()
			rec.MinDistance = eval.MinDistance

			// The judge left the scene posed with the accepted candidate;
			// reapply anyway so rendering never depends on judge internals.
			sampler.Apply(sc, outcome.Accepted.Candidate)
			camera := s.SampleCamera(rig.TableCenter, cfg.Camera)
			frame := render.Frame{
				Index:  index,
				Scene:  sc,
				Camera: camera,
				Light:  sampler.LightAt(camera, cfg.Light),
			}

			observability.Pipeline().OnRenderStart(ctx, index)
			renderStart := time.Now()
			res, hit, renderErr := r.renderWithCache(ctx, renderer, frame, provenance, cfg)
			observability.Pipeline().OnRenderComplete(ctx, index, time.Since(renderStart), renderErr)

			if renderErr != nil {
				rec.State = runlog.StateRenderFailed
				result.Stats.RenderFailed++
				logger.Error("render failed",
					"image", rec.Name,
					"error", renderErr)
			} else {
				rec.State = runlog.StateAccepted
				rec.OutputPath = res.ImagePath
				rec.SegPath = res.SegPath
				result.Stats.Accepted++
				logger.Info("rendered image",
					"image", rec.Name,
					"attempts", rec.Attempts,
					"min_distance", rec.MinDistance,
					"cache_hit", hit)
			}
		}

		if err := logbook.Append(rec); err != nil {
			return nil, err
		}
		observability.Pipeline().OnImageComplete(ctx, index, string(rec.State),
			rec.Attempts, time.Since(imageStart), nil)
	}

	result.Records = logbook.Records()
	result.Stats.Duration = time.Since(start)

	if !opts.SkipExport {
		if err := r.export(ctx, cfg, logPath, result.Records); err != nil {
			return nil, err
		}
		result.LogPath = logPath
	}

	logger.Info("run complete",
		"accepted", result.Stats.Accepted,
		"exhausted", result.Stats.Exhausted,
		"render_failed", result.Stats.RenderFailed,
		"attempts", result.Stats.TotalAttempts,
		"duration", result.Stats.Duration)

	return result, nil
}

// loadScene returns the scene from the options or from the configured
// source file, along with the raw document for provenance hashing.
func (r *Runner) loadScene(opts Options) (*scene.Scene, []byte, error) {
	if opts.Scene != nil {
		return opts.Scene, nil, nil
	}
	data, err := os.ReadFile(opts.Config.Scene.Source)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeSceneSource, err, "read scene %s", opts.Config.Scene.Source)
	}
	sc, err := scene.Load(data)
	if err != nil {
		return nil, nil, err
	}
	return sc, data, nil
}

// renderWithCache renders one frame, serving both output files from the
// cache when their provenance matches a previous run.
func (r *Runner) renderWithCache(ctx context.Context, renderer render.Renderer, frame render.Frame, provenance string, cfg *config.Config) (render.Result, bool, error) {
	keyOpts := cache.FrameKeyOpts{
		Seed:   cfg.Images.Seed,
		Index:  frame.Index,
		Width:  cfg.Camera.ImageSize[0],
		Height: cfg.Camera.ImageSize[1],
	}
	imgKey := r.Keyer.FrameKey(provenance, keyOpts)
	segKey := r.Keyer.FrameKey(provenance+":seg", keyOpts)

	res := render.Result{
		ImagePath: filepath.Join(cfg.Images.OutputDir, render.ImageName(frame.Index)+".png"),
		SegPath:   filepath.Join(cfg.Images.OutputDir, render.SegName(frame.Index)+".png"),
	}

	imgData, imgHit, imgErr := r.Cache.Get(ctx, imgKey)
	segData, segHit, segErr := r.Cache.Get(ctx, segKey)
	if imgErr == nil && segErr == nil && imgHit && segHit {
		observability.Cache().OnCacheHit(ctx, "frame")
		if err := os.MkdirAll(cfg.Images.OutputDir, 0o755); err != nil {
			return render.Result{}, false, errors.Wrap(errors.ErrCodeRender, err, "create output dir")
		}
		if err := os.WriteFile(res.ImagePath, imgData, 0o644); err != nil {
			return render.Result{}, false, errors.Wrap(errors.ErrCodeRender, err, "write cached image")
		}
		if err := os.WriteFile(res.SegPath, segData, 0o644); err != nil {
			return render.Result{}, false, errors.Wrap(errors.ErrCodeRender, err, "write cached segmap")
		}
		return res, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "frame")

	rendered, err := renderer.Render(ctx, frame)
	if err != nil {
		return render.Result{}, false, err
	}

	r.storeArtifact(ctx, imgKey, rendered.ImagePath)
	r.storeArtifact(ctx, segKey, rendered.SegPath)
	return rendered, false, nil
}

// storeArtifact caches one rendered file. Cache write failures are logged
// and swallowed; the artifact already exists on disk.
func (r *Runner) storeArtifact(ctx context.Context, key, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, TTLFrame)
	})
	if err != nil {
		r.Logger.Debug("cache write failed", "key_type", "frame", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "frame", len(data))
}

// export writes the CSV run log and, when configured, mirrors the records
// to MongoDB.
func (r *Runner) export(ctx context.Context, cfg *config.Config, logPath string, records []runlog.ImageRecord) error {
	if err := os.MkdirAll(cfg.Images.OutputDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "create output dir")
	}
	if err := runlog.AppendCSV(logPath, records); err != nil {
		return err
	}

	if !cfg.Export.Mongo.Enabled {
		return nil
	}
	observability.Export().OnExportStart(ctx, "mongo", len(records))
	start := time.Now()
	exporter, err := runlog.NewMongoExporter(ctx, cfg.Export.Mongo)
	if err != nil {
		observability.Export().OnExportComplete(ctx, "mongo", len(records), time.Since(start), err)
		return err
	}
	defer func() { _ = exporter.Close(ctx) }()

	err = exporter.Export(ctx, records)
	observability.Export().OnExportComplete(ctx, "mongo", len(records), time.Since(start), err)
	return err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
