package render

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
)

// JobStore is the narrow slice of the job store the supervisor needs. The
// supervisor is the sole writer of terminal job state.
type JobStore interface {
	GetJob(ctx context.Context, id string) (models.Job, error)
	UpdateJob(ctx context.Context, id string, upd models.JobUpdate) error
}

// Config holds the supervisor's immutable settings.
type Config struct {
	FFmpegBin  string
	FFprobeBin string
	AssetsDir  string
	OutputDir  string

	// EngineWaitDelay bounds how long Wait may block on the engine's
	// stderr pipe after the process itself has exited. An engine child
	// that inherits stderr and outlives its parent would otherwise hold
	// the render slot until the child exits too.
	EngineWaitDelay time.Duration
}

// Supervisor runs one job's render to completion: probe the source, compile
// the overlay graph, spawn the engine and translate its progress stream into
// monotonically increasing job progress.
type Supervisor struct {
	store    JobStore
	prober   *Prober
	compiler *Compiler
	cfg      Config
	log      *logger.Logger
}

func NewSupervisor(store JobStore, cfg Config, log *logger.Logger) *Supervisor {
	if cfg.FFmpegBin == "" {
		cfg.FFmpegBin = "ffmpeg"
	}
	if cfg.EngineWaitDelay <= 0 {
		cfg.EngineWaitDelay = 5 * time.Second
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Supervisor{
		store:    store,
		prober:   NewProber(cfg.FFprobeBin),
		compiler: NewCompiler(NewAssetResolver(cfg.AssetsDir)),
		cfg:      cfg,
		log:      log.WithComponent("supervisor"),
	}
}

// Render executes the full pipeline for jobID. It may run for seconds to
// minutes; the caller decides the concurrency. On return the job is in a
// terminal state unless the job record itself could not be read.
func (s *Supervisor) Render(ctx context.Context, jobID string) error {
	log := s.log.FromContext(ctx).WithJobID(jobID)

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		// Nothing to transition; the record is unreachable.
		return errors.Wrap(err, "supervisor.render", "failed to load job")
	}
	if job.Status.Terminal() {
		log.Warn("job already in terminal state, skipping", "status", string(job.Status))
		return nil
	}

	// Mark processing with a small non-zero progress so pollers see
	// liveness immediately.
	if err := s.update(ctx, jobID, models.JobUpdate{
		Status:   ptr(models.StatusProcessing),
		Message:  ptr("Processing with ffmpeg"),
		Progress: ptr(1.0),
	}); err != nil {
		return s.fail(ctx, jobID, errors.Wrap(err, "supervisor.start", "failed to mark job processing"))
	}

	duration, err := s.prober.Duration(ctx, job.InputPath)
	if err != nil {
		return s.fail(ctx, jobID, err)
	}
	log.Debug("source probed", "duration_s", duration)

	graph, err := s.compiler.Compile(job.Overlays)
	if err != nil {
		return s.fail(ctx, jobID, err)
	}
	log.Debug("graph compiled",
		"stages", !graph.Empty(),
		"extra_inputs", len(graph.ExtraInputs),
	)

	outputPath := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s_output.mp4", jobID))
	args := buildEngineArgs(job.InputPath, graph, outputPath)

	if err := s.run(ctx, jobID, args, duration, log); err != nil {
		return s.fail(ctx, jobID, err)
	}

	// Terminal writes must land even when the render context was torn
	// down mid-run; otherwise the job is stranded in processing forever.
	if err := s.update(context.WithoutCancel(ctx), jobID, models.JobUpdate{
		Status:     ptr(models.StatusDone),
		Message:    ptr("Rendering complete"),
		Progress:   ptr(100.0),
		OutputPath: ptr(outputPath),
	}); err != nil {
		return s.fail(ctx, jobID, errors.Wrap(err, "supervisor.finish", "failed to mark job done"))
	}

	log.Info("render finished", "output_path", outputPath)
	return nil
}

// run spawns the engine and pumps its progress stream into the job record.
// Progress writes are monotonically non-decreasing; a late marker that would
// lower progress is dropped.
func (s *Supervisor) run(ctx context.Context, jobID string, args []string, duration float64, log *logger.Logger) error {
	cmd := exec.CommandContext(ctx, s.cfg.FFmpegBin, args...)

	// Wait must not block past the engine's exit just because a child
	// process inherited stderr; after the delay the pipe is force-closed.
	cmd.WaitDelay = s.cfg.EngineWaitDelay

	// -progress pipe:2 shares stderr with the engine's own diagnostics;
	// the parser skips anything that is not an out_time marker.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "supervisor.spawn", "failed to open progress pipe")
	}

	log.Debug("spawning engine", "bin", s.cfg.FFmpegBin, "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return errors.WrapWithCode(err, errors.CodeEngineFailure, "supervisor.spawn", "failed to start render engine")
	}

	// The progress pump runs beside Wait so that WaitDelay can close a
	// lingering pipe out from under the scanner; the pump ends on EOF or
	// on that forced close.
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)

		lastProgress := 0.0
		for ev := range StreamProgress(stderr, duration) {
			if ev.Percent <= lastProgress {
				continue
			}
			lastProgress = ev.Percent

			// Progress writes are best-effort; the store already retries
			// with backoff, and the terminal write is the one that counts.
			if err := s.update(ctx, jobID, models.JobUpdate{Progress: ptr(ev.Percent)}); err != nil {
				log.Warn("progress write failed", "error", err.Error(), "percent", ev.Percent)
			}
		}
	}()

	err = cmd.Wait()
	<-progressDone

	// ErrWaitDelay means the engine itself exited cleanly and only the
	// pipe outlived it.
	if err != nil && err != exec.ErrWaitDelay {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		log.Error("engine failed", "exit_code", exitCode, "error", err.Error())
		return errors.EngineFailure(exitCode)
	}

	return nil
}

// fail transitions the job to its error state with a short message. The raw
// engine diagnostics never reach the job record; they go to the log.
func (s *Supervisor) fail(ctx context.Context, jobID string, cause error) error {
	log := s.log.FromContext(ctx).WithJobID(jobID)

	msg := "Rendering failed"
	var e *errors.Error
	if errors.As(cause, &e) {
		msg = e.Message
	}
	if len(msg) > 500 {
		msg = msg[:500]
	}

	log.WithError(cause).Error("job failed", "code", string(errors.GetCode(cause)))

	// The terminal write runs detached from ctx: a render killed by
	// cancellation must still reach its error state instead of sitting in
	// processing forever. Best effort beyond that; if the store itself is
	// down the failure is still surfaced to the caller.
	if err := s.store.UpdateJob(context.WithoutCancel(ctx), jobID, models.JobUpdate{
		Status:  ptr(models.StatusError),
		Message: ptr(msg),
	}); err != nil {
		log.Error("terminal error write failed", "error", err.Error())
	}

	return cause
}

func (s *Supervisor) update(ctx context.Context, jobID string, upd models.JobUpdate) error {
	return s.store.UpdateJob(ctx, jobID, upd)
}

// buildEngineArgs constructs the full engine invocation. With no compiled
// graph the base video is copied through untouched; otherwise the graph's
// final label is mapped alongside the base audio stream, if any.
func buildEngineArgs(inputPath string, graph Graph, outputPath string) []string {
	if graph.Empty() {
		return []string{
			"-y",
			"-i", inputPath,
			"-c:v", "copy",
			"-c:a", "copy",
			"-progress", "pipe:2",
			"-nostats",
			"-v", "error",
			outputPath,
		}
	}

	args := []string{"-y", "-i", inputPath}
	for _, extra := range graph.ExtraInputs {
		args = append(args, "-i", extra)
	}

	args = append(args,
		"-filter_complex", graph.FilterComplex,
		"-map", graph.FinalLabel,
		"-map", "0:a?",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-progress", "pipe:2",
		"-nostats",
		"-v", "error",
		outputPath,
	)

	return args
}

func ptr[T any](v T) *T {
	return &v
}
