// Package worker drains the render intake queue into a bounded pool of
// execution slots. Each slot runs one job's supervisor call to completion,
// so at most Pool.Size renders execute concurrently regardless of how fast
// submissions arrive.
package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nabeel-w/ButterCut-Assignment/internal/archive"
	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
)

// Queue is the intake side of the scheduler.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

// Renderer runs one job to a terminal state.
type Renderer interface {
	Render(ctx context.Context, jobID string) error
}

// JobReader loads job records for post-render archival.
type JobReader interface {
	GetJob(ctx context.Context, id string) (models.Job, error)
}

type Deps struct {
	Queue      Queue
	Renderer   Renderer
	Jobs       JobReader
	Archive    archive.Provider
	MaxWorkers int
	Log        *logger.Logger
}

// popTimeout bounds each blocking queue read so the loop can notice a
// canceled context between pops.
const popTimeout = 5 * time.Second

// Run drains the queue until ctx is canceled, then waits for in-flight
// renders to finish.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	pool := NewPool(d.MaxWorkers)
	log.Info("worker started", "slots", pool.Size())

	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, draining in-flight jobs")
			pool.Wait()
			return ctx.Err()
		default:
		}

		jobID, err := d.Queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping, draining in-flight jobs")
				pool.Wait()
				return ctx.Err()
			}
			log.Warn("queue pop error, retrying", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}
		if jobID == "" {
			continue
		}

		// A dispatched render runs to completion even while the loop
		// context is being torn down; the pool drain above waits for it.
		// Cancelling it here would kill the engine mid-render and strand
		// the job in processing.
		jobCtx := logger.ContextWithJobID(context.WithoutCancel(ctx), jobID)
		if err := pool.Submit(ctx, func() {
			processJob(jobCtx, d, jobID, log.WithJobID(jobID))
		}); err != nil {
			// Context canceled while every slot was busy; the popped
			// job stays unprocessed and is lost to this worker.
			log.Warn("submission aborted during shutdown", "job_id", jobID)
			pool.Wait()
			return err
		}
	}
}

func processJob(ctx context.Context, d Deps, jobID string, log *logger.Logger) {
	log.Info("processing job")
	start := time.Now()

	if err := d.Renderer.Render(ctx, jobID); err != nil {
		log.Error("job failed",
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	log.Info("job completed", "duration_ms", time.Since(start).Milliseconds())

	if d.Archive != nil {
		archiveOutput(ctx, d, jobID, log)
	}
}

// archiveOutput copies the finished render into the archive backend. Failure
// is logged only; the job is already done and its output remains readable in
// the output directory.
func archiveOutput(ctx context.Context, d Deps, jobID string, log *logger.Logger) {
	job, err := d.Jobs.GetJob(ctx, jobID)
	if err != nil || job.OutputPath == "" {
		return
	}

	f, err := os.Open(job.OutputPath)
	if err != nil {
		log.Warn("archive skipped, output unreadable", "error", err.Error())
		return
	}
	defer f.Close()

	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	out, err := d.Archive.Put(ctx, archive.PutInput{
		Key:         fmt.Sprintf("renders/%s/output.mp4", jobID),
		ContentType: "video/mp4",
		Reader:      f,
		Size:        size,
	})
	if err != nil {
		log.Warn("archive upload failed", "error", err.Error())
		return
	}

	log.Debug("render archived", "key", out.Key, "size", out.Size)
}
