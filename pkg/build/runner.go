package build

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/redo-tools/redo/pkg/depfile"
	"github.com/redo-tools/redo/pkg/dofile"
	"github.com/redo-tools/redo/pkg/environment"
	"github.com/redo-tools/redo/pkg/filesystem/locking"
	"github.com/redo-tools/redo/pkg/jobserver"
	"github.com/redo-tools/redo/pkg/logging"
	"github.com/redo-tools/redo/pkg/must"
)

// job represents one outstanding unit of scheduled work: a running recipe,
// or a wait on a lock held by another builder.
type job struct {
	// target is the target as given on the command line, empty for lock
	// waits.
	target string
	// dir and base locate the target on disk.
	dir, base string
	// tempDep and tempTarget are the in-flight temporary paths.
	tempDep, tempTarget string
	// lock is the held (recipes) or contended (lock waits) lock handle.
	lock *locking.Locker
	// implicit records which kind of token the job holds.
	implicit bool
	// pid identifies the job in the pending table: the recipe process id,
	// or a negative sequence number for lock waits.
	pid int
	// status is the recipe exit status, valid once the job completes.
	status int
}

// dispatch starts bringing a stale target up to date: it launches the
// target's recipe, or enrolls a wait on another builder's lock. The caller
// has already procured a token of the indicated kind for the job. Returned
// errors are fatal to the whole invocation.
func (s *scheduler) dispatch(target string, implicit bool) error {
	c := s.ctx
	dir, base, err := splitTarget(c.BaseDir, target)
	if err != nil {
		return err
	}

	do, found := dofile.Find(dir, base, c.candidateRecorder())
	if !found {
		return withCode(StatusMisuse, errors.Errorf("no dofile for %s", base))
	}

	c.Logger.Printf("redo %s", base)

	// Refuse to re-enter a build that is already running somewhere in this
	// process's ancestry.
	guard := GuardVariable(dir, base)
	if holder := os.Getenv(guard); holder != "" {
		return withCode(StatusCycle, errors.Errorf("cyclic dependency %s [%s]", target, holder))
	}

	if err := depfile.EnsureStateDir(dir); err != nil {
		return withCode(StatusFilesystem, err)
	}
	if !s.cleaned[dir] {
		s.cleaned[dir] = true
		depfile.CleanOrphans(dir, c.Logger)
	}

	lock, err := locking.NewLocker(depfile.LockPath(dir, base), 0666)
	if err != nil {
		return withCode(StatusFilesystem, err)
	}
	acquired, err := lock.TryLock()
	if err != nil {
		lock.Close()
		return withCode(StatusFilesystem, errors.Wrap(err, "unable to lock target"))
	}
	if !acquired {
		// Another process is building this target. Wait for it to finish
		// and treat its result as ours.
		s.enrollWait(target, lock, implicit)
		return nil
	}

	// Open the candidate ledger and record the dofile as its first entry.
	nonce := depfile.Nonce()
	tempDep := depfile.TempDepPath(dir, base, nonce)
	channel, err := os.OpenFile(tempDep, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		lock.Close()
		return withCode(StatusSetup, errors.Wrap(err, "could not create temporary ledger"))
	}
	writer := depfile.NewWriter(channel, dir, c.dirprefix)
	if err := writer.Used(do); err != nil {
		channel.Close()
		must.OSRemove(tempDep, c.Logger)
		lock.Close()
		return withCode(StatusSetup, err)
	}

	// Create the candidate target with the pre-existing target's mode.
	mode := os.FileMode(0644)
	if info, err := os.Stat(filepath.Join(dir, base)); err == nil {
		mode = info.Mode().Perm()
	}
	tempTarget := depfile.TempTargetPath(dir, base, nonce)
	output, err := os.OpenFile(tempTarget, os.O_CREATE|os.O_RDWR|os.O_EXCL, mode)
	if err != nil {
		channel.Close()
		must.OSRemove(tempDep, c.Logger)
		lock.Close()
		return withCode(StatusSetup, errors.Wrap(err, "could not create temporary target"))
	}

	// Recipes run from the dofile's directory; walking the dofile's parent
	// components yields that directory and the prefix from it down to the
	// target, which recipes need to address the target relatively.
	name := strings.TrimPrefix(do, "./")
	doDir := dir
	var components []string
	for strings.HasPrefix(name, "../") {
		name = name[3:]
		components = append([]string{filepath.Base(doDir)}, components...)
		doDir = filepath.Dir(doDir)
	}
	dirprefix := strings.Join(components, "/")

	relTarget := base
	if dirprefix != "" {
		relTarget = dirprefix + "/" + base
	}
	relTemp := filepath.Join(dirprefix, filepath.Join(".redo", filepath.Base(tempTarget)))
	basename := dofile.Basename(name, relTarget)

	// Assemble the child environment: the ledger channel lands at
	// descriptor 3, the token pipe (when present) at 4 and 5.
	env := environment.ToMap(os.Environ())
	env[DepFdVariable] = "3"
	env[LevelVariable] = strconv.Itoa(c.Level + 1)
	env[DirPrefixVariable] = dirprefix
	env[guard] = strconv.Itoa(os.Getpid())
	files := []*os.File{channel}
	if read, write := c.Pool.Files(); read != nil {
		files = append(files, read, write)
		env[jobserver.ReadFdVariable] = "4"
		env[jobserver.WriteFdVariable] = "5"
	} else {
		delete(env, jobserver.ReadFdVariable)
		delete(env, jobserver.WriteFdVariable)
	}

	// Executable dofiles run directly; anything else goes through the
	// shell, with -e so that failing commands fail the recipe.
	var command *exec.Cmd
	if unix.Access(filepath.Join(doDir, name), unix.X_OK) == nil {
		command = &exec.Cmd{
			Path: name,
			Args: []string{name, relTarget, basename, relTemp},
		}
	} else {
		flag := "-e"
		if c.Trace {
			flag = "-ex"
		}
		command = exec.Command("/bin/sh", flag, name, relTarget, basename, relTemp)
	}
	command.Dir = doDir
	command.Env = environment.FromMap(env)
	command.Stdin = os.Stdin
	command.Stdout = output
	command.Stderr = os.Stderr
	command.ExtraFiles = files

	err = command.Start()
	output.Close()
	channel.Close()
	if err != nil {
		must.OSRemove(tempDep, c.Logger)
		must.OSRemove(tempTarget, c.Logger)
		lock.Close()
		return withCode(StatusSetup, errors.Wrapf(err, "unable to start recipe for %s", base))
	}

	j := &job{
		target:     target,
		dir:        dir,
		base:       base,
		tempDep:    tempDep,
		tempTarget: tempTarget,
		lock:       lock,
		implicit:   implicit,
		pid:        command.Process.Pid,
	}
	s.enroll(j)
	c.Logger.Verbosef("%sredo %s # %s [%d]", logging.Indent(c.Level), target, name, j.pid)
	go func() {
		j.status = exitStatus(command.Wait())
		s.done <- j
	}()
	return nil
}

// enrollWait enrolls a job that blocks on another builder's lock. When it
// completes, the original builder has finished and the target is presumed
// current.
func (s *scheduler) enrollWait(target string, lock *locking.Locker, implicit bool) {
	s.waitSequence--
	j := &job{lock: lock, implicit: implicit, pid: s.waitSequence}
	s.enroll(j)
	s.ctx.Logger.Debugf("%s wait job %s [%d]", logging.Indent(s.ctx.Level), target, j.pid)
	go func() {
		if err := lock.Lock(); err != nil {
			j.status = StatusSetup
		}
		s.done <- j
	}()
}

// publish materializes a successfully-built target: non-empty output is
// renamed into place and recorded in the ledger; empty output marks the
// target always out-of-date; missing output leaves the old target alone and
// records its own absence. The candidate ledger then atomically replaces the
// real one and the lock file is removed.
func (s *scheduler) publish(j *job) {
	c := s.ctx
	channel, err := os.OpenFile(j.tempDep, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		c.Logger.Warn(errors.Wrap(err, "unable to reopen temporary ledger"))
		must.OSRemove(j.tempTarget, c.Logger)
		return
	}
	writer := depfile.NewWriter(channel, j.dir, c.dirprefix)

	if info, err := os.Stat(j.tempTarget); err != nil {
		c.Logger.Warn(errors.Wrapf(err, "recipe output missing for %s", j.base))
		writer.IfCreate(j.base)
	} else if info.Size() > 0 {
		must.Rename(j.tempTarget, filepath.Join(j.dir, j.base), c.Logger)
		if err := writer.Used(j.base); err != nil {
			c.Logger.Warn(err)
		}
	} else {
		must.OSRemove(j.tempTarget, c.Logger)
		writer.Always()
	}

	must.Close(channel, c.Logger)
	must.Rename(j.tempDep, depfile.DepPath(j.dir, j.base), c.Logger)
	must.OSRemove(depfile.LockPath(j.dir, j.base), c.Logger)
}
