package build

import (
	"github.com/pkg/errors"

	"github.com/redo-tools/redo/pkg/logging"
	"github.com/redo-tools/redo/pkg/must"
)

// scheduler tracks the open jobs of one if-change invocation.
type scheduler struct {
	// ctx is the owning invocation context.
	ctx *Context
	// jobs is the pending-job table, keyed by recipe pid (negative sequence
	// numbers for lock waits). Its size is bounded by the token budget.
	jobs map[int]*job
	// done receives completed jobs from their waiter goroutines.
	done chan *job
	// open is the number of outstanding jobs.
	open int
	// cleaned marks directories already swept for orphaned temporaries.
	cleaned map[string]bool
	// waitSequence allocates identifiers for lock waits.
	waitSequence int
	// worst is the highest recipe exit status seen so far.
	worst int
}

// finish post-processes a completed job: publication or cleanup, lock
// release, token return, and failure policy.
func (s *scheduler) finish(j *job) error {
	c := s.ctx
	s.open--
	delete(s.jobs, j.pid)

	if j.target != "" {
		if j.status > 0 {
			must.OSRemove(j.tempDep, c.Logger)
			must.OSRemove(j.tempTarget, c.Logger)
		} else {
			s.publish(j)
		}
	}

	name := j.target
	if name == "" {
		name = "waiting.."
	}
	c.Logger.Debugf("%s finish %s [%d]", logging.Indent(c.Level), name, j.pid)

	j.lock.Close()
	c.Pool.Vacate(j.implicit)

	if j.status > 0 {
		if j.status > s.worst {
			s.worst = j.status
		}
		if c.KeepGoing < 0 {
			return withCode(j.status,
				errors.Errorf("recipe for %s failed with status %d [%d]", j.target, j.status, j.pid))
		}
	}
	return nil
}

// enroll adds a job to the pending table.
func (s *scheduler) enroll(j *job) {
	s.jobs[j.pid] = j
	s.open++
}

// IfChange brings each of the specified targets up to date, building stale
// ones under the token discipline. Targets are dispatched in argument order;
// completion order is up to the kernel. Under keep-going, the worst recipe
// status is surfaced once all targets have been attempted; otherwise the
// first failure aborts the invocation.
func (c *Context) IfChange(targets []string) error {
	// Phase one: decide, for every target, whether it needs work at all. A
	// fully current invocation performs no further process activity.
	skip := make([]bool, len(targets))
	for i, target := range targets {
		current, err := c.UpToDate(target)
		if err != nil {
			return err
		}
		skip[i] = current
	}

	// Phase two: dispatch needy targets as tokens allow, reaping
	// completions as they arrive.
	s := &scheduler{
		ctx:     c,
		jobs:    make(map[int]*job),
		done:    make(chan *job),
		cleaned: make(map[string]bool),
	}
	index := 0
	for {
		dispatched := false
		if index < len(targets) {
			if skip[index] {
				index++
				continue
			}
			implicit := c.Pool.ImplicitAvailable()
			if c.Pool.TryProcure() {
				target := targets[index]
				index++
				dispatched = true
				if err := s.dispatch(target, implicit); err != nil {
					c.Pool.Vacate(implicit)
					return err
				}
			}
		}

		if dispatched {
			// Opportunistically reap without stalling the dispatch loop.
			select {
			case j := <-s.done:
				if err := s.finish(j); err != nil {
					return err
				}
			default:
			}
			continue
		}

		if s.open == 0 {
			if index >= len(targets) {
				break
			}
			continue
		}
		j := <-s.done
		if err := s.finish(j); err != nil {
			return err
		}
	}

	if s.worst > 0 {
		return withCode(s.worst, errors.Errorf("kept going; worst recipe status %d", s.worst))
	}
	return nil
}
