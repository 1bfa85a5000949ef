package jobserver

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/redo-tools/redo/pkg/environment"
)

// Environment variables carrying the token pipe endpoints and the
// parallelism budget.
const (
	ReadFdVariable  = "REDO_RD_FD"
	WriteFdVariable = "REDO_WR_FD"
	JobsVariable    = "JOBS"
)

// Pool arbitrates build tokens between a process and its descendants. Each
// process owns one implicit token; further tokens are bytes drawn from a
// pipe shared across the whole process tree, in the manner of a make-style
// jobserver. A Pool is confined to the scheduling loop of its process and is
// not safe for concurrent use.
type Pool struct {
	// read and write are the token pipe endpoints, nil when running without
	// a pipe (serial operation).
	read  *os.File
	write *os.File
	// implicit is the number of locally-owned tokens.
	implicit int
}

// Open establishes the token pool for this process: the pipe endpoints are
// inherited from the environment if present, created fresh if a parallelism
// budget above one is requested, and omitted otherwise.
func Open() (*Pool, error) {
	pool := &Pool{implicit: 1}

	readFd := environment.Fd(ReadFdVariable)
	writeFd := environment.Fd(WriteFdVariable)
	if readFd >= 0 && writeFd >= 0 {
		pool.read = os.NewFile(uintptr(readFd), "jobserver-read")
		pool.write = os.NewFile(uintptr(writeFd), "jobserver-write")
		return pool, nil
	}

	if jobs := environment.Flag(JobsVariable); jobs > 1 {
		read, write, err := os.Pipe()
		if err != nil {
			return nil, errors.Wrap(err, "no pipes for pool")
		}
		pool.read = read
		pool.write = write
		for i := 0; i < jobs-1; i++ {
			pool.Vacate(false)
		}
	}
	return pool, nil
}

// ImplicitAvailable indicates whether the next procured token would be the
// locally-owned one.
func (p *Pool) ImplicitAvailable() bool {
	return p.implicit > 0
}

// TryProcure attempts to obtain a token without blocking.
func (p *Pool) TryProcure() bool {
	if p.implicit > 0 {
		p.implicit--
		return true
	}
	if p.read == nil {
		return false
	}
	fd := int(p.read.Fd())
	unix.SetNonblock(fd, true)
	var buffer [1]byte
	count, _ := unix.Read(fd, buffer[:])
	return count > 0
}

// Procure obtains a token, blocking on the pipe if necessary. It returns
// false only when no pipe exists and the implicit token is spent.
func (p *Pool) Procure() bool {
	if p.implicit > 0 {
		p.implicit--
		return true
	}
	if p.read == nil {
		return false
	}
	fd := int(p.read.Fd())
	unix.SetNonblock(fd, false)
	var buffer [1]byte
	count, _ := unix.Read(fd, buffer[:])
	return count > 0
}

// Vacate returns a token to circulation: the implicit token goes back to the
// local count, a pipe token goes back onto the pipe.
func (p *Pool) Vacate(implicit bool) {
	if implicit {
		p.implicit++
		return
	}
	if p.write == nil {
		return
	}
	p.write.Write([]byte{0})
}

// Files returns the pipe endpoints for inheritance by a child process, or
// nils when running without a pipe.
func (p *Pool) Files() (*os.File, *os.File) {
	return p.read, p.write
}
