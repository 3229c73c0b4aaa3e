package exec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
)

// Process is a running command whose stdout is read as a stream.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	mutex  sync.Mutex
	stderr bytes.Buffer
	closed bool
}

// Stream starts cmdString through bash, so pipes and redirections work,
// and returns its stdout.
func Stream(cmdString string) (*Process, error) {
	if strings.TrimSpace(cmdString) == "" {
		return nil, errors.New("empty cmd")
	}

	p := &Process{cmd: exec.Command("bash", "-c", cmdString)}
	// If Env is nil, the new process uses the current process's environment.
	p.cmd.Env = os.Environ()
	// own process group, so Close reaches the children of bash too
	p.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	p.cmd.Stderr = &lockedWriter{mutex: &p.mutex, w: &p.stderr}

	var err error
	if p.stdout, err = p.cmd.StdoutPipe(); err != nil {
		return nil, err
	}

	if err = p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("%v: %s", err, cmdString)
	}

	return p, nil
}

func (p *Process) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

// Close kills the process group if still running and reaps bash.
func (p *Process) Close() error {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil
	}
	p.closed = true
	p.mutex.Unlock()

	if p.cmd.Process != nil {
		_ = syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
	}

	err := p.cmd.Wait()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && !exitErr.Exited() {
		// killed by us
		return nil
	}
	if err != nil {
		return fmt.Errorf("%v: %s", err, p.Stderr())
	}
	return nil
}

// Stderr returns what the process wrote on stderr so far.
func (p *Process) Stderr() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return strings.TrimSuffix(p.stderr.String(), "\n")
}

type lockedWriter struct {
	mutex *sync.Mutex
	w     io.Writer
}

func (l *lockedWriter) Write(b []byte) (int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.w.Write(b)
}
