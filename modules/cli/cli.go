package cli

import (
	"fmt"

	"github.com/oblq/gauge/internal/exec"
)

// Cli streams samples from the stdout of a command,
// eg.: a sensor simulator or `cat capture.txt`.
type Cli struct {
	*exec.Process
	cmd string
}

// Open starts cmd.
func Open(cmd string) (*Cli, error) {
	p, err := exec.Stream(cmd)
	if err != nil {
		return nil, fmt.Errorf("unable to start `%s`: %v", cmd, err)
	}
	return &Cli{Process: p, cmd: cmd}, nil
}

func (c *Cli) String() string {
	return "cli: " + c.cmd
}
