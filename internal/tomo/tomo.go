// ABOUTME: Shared plumbing for driving the VM Tomography Fortran programs.
// ABOUTME: Builds stdin blocks and runs executables found on the search path.
package tomo

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Program names of the external toolchain.
const (
	RaytraceProgram = "slim_rays"
	InvertProgram   = "vm_tomo"
	SmoothProgram   = "vm_smooth_model"
)

// fortranBool renders a bool as the single-letter form Fortran list input
// expects.
func fortranBool(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ff formats a float the shortest way that round-trips.
func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// runProgram feeds stdin to an external program and waits for it to exit.
func runProgram(ctx context.Context, program, stdin string, stdout, stderr io.Writer) error {
	path, err := exec.LookPath(program)
	if err != nil {
		return fmt.Errorf("%s is not on the search path: %w", program, err)
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd := exec.CommandContext(ctx, path)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", program, err)
	}
	return nil
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
