package post

import (
	"context"
	"os"
	"os/exec"
)

// Runner executes one invocation of the external posting tool.
type Runner interface {
	Run(ctx context.Context, args []string, extraEnv []string) error
}

// CrosspostRunner shells out to the crosspost CLI via npx. All posting
// logic, credential handling and per-network API behavior live there.
type CrosspostRunner struct {
	command string
}

func NewCrosspostRunner() *CrosspostRunner {
	return &CrosspostRunner{command: "npx"}
}

func (r *CrosspostRunner) Run(ctx context.Context, args []string, extraEnv []string) error {
	cmd := exec.CommandContext(ctx, r.command, append([]string{"crosspost"}, args...)...)
	cmd.Env = append(os.Environ(), extraEnv...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
