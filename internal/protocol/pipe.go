package protocol

import (
	"fmt"
	"os"
	"os/exec"
)

// PipeTransport spawns a server subprocess and frames messages over its
// stdin/stdout. Closing the transport closes the pipes and releases the
// process handle; the process itself is not killed, that remains the
// caller's responsibility.
type PipeTransport struct {
	*StdioTransport
	cmd *exec.Cmd
}

// NewPipeTransport starts command with the given arguments and attaches to
// its pipes. The subprocess inherits this process's stderr so server logs
// stay visible.
func NewPipeTransport(command string, args ...string) (*PipeTransport, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start server process: %w", err)
	}

	closer := func() error {
		stdin.Close()
		stdout.Close()
		// Reap the child so it does not linger as a zombie. The server
		// exits on its own once stdin closes.
		go cmd.Wait()
		return nil
	}
	return &PipeTransport{
		StdioTransport: NewStdioTransport(stdout, stdin, closer),
		cmd:            cmd,
	}, nil
}

// Pid returns the subprocess ID, for logging.
func (t *PipeTransport) Pid() int {
	if t.cmd.Process == nil {
		return 0
	}
	return t.cmd.Process.Pid
}
