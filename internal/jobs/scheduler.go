// Package jobs runs the background work: unread message reminders and weekly
// roster synchronization. Jobs fire on cron schedules evaluated with gronx.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adhocore/gronx"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type entry struct {
	spec string
	job  Job
}

// Scheduler fires registered jobs on their cron schedules. Each job runs in
// its own goroutine; a slow run delays only that job's next tick.
type Scheduler struct {
	entries []entry
}

func NewScheduler() *Scheduler { return &Scheduler{} }

// Add registers a job under a cron expression. Invalid expressions are
// rejected here so a typo fails at startup, not at first tick.
func (s *Scheduler) Add(spec string, job Job) error {
	if !gronx.IsValid(spec) {
		return fmt.Errorf("invalid cron expression %q for job %s", spec, job.Name())
	}
	s.entries = append(s.entries, entry{spec: spec, job: job})
	return nil
}

// Start launches the schedule loops. They exit when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, e := range s.entries {
		log.Printf("INFO: job %s scheduled with cron %q", e.job.Name(), e.spec)
		go runLoop(ctx, e)
	}
}

func runLoop(ctx context.Context, e entry) {
	for {
		next, err := gronx.NextTickAfter(e.spec, time.Now(), false)
		if err != nil {
			log.Printf("ERROR: job %s: next tick for %q: %v", e.job.Name(), e.spec, err)
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		start := time.Now()
		if err := e.job.Run(ctx); err != nil {
			log.Printf("ERROR: job %s failed: %v", e.job.Name(), err)
			continue
		}
		log.Printf("INFO: job %s finished in %s", e.job.Name(), time.Since(start).Round(time.Millisecond))
	}
}
