// Package subprocess spawns fire-and-forget external commands on behalf
// of hook effects. Spawn failures are reported to the logging sink and
// never reach the event pipeline.
package subprocess

import (
	"fmt"
	"os"
	"os/exec"

	"remapd/internal/logging"
)

// TrySpawn starts program with args detached from the event pipeline.
// The child's output goes to our stderr. The returned error covers
// startup only; the command's own exit status is not observed.
func TrySpawn(program string, args ...string) error {
	cmd := exec.Command(program, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", program, err)
	}
	// Reap the child so it does not linger as a zombie.
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// Spawn is TrySpawn with the failure policy applied: errors are logged
// as warnings and otherwise swallowed.
func Spawn(program string, args ...string) {
	if err := TrySpawn(program, args...); err != nil {
		logging.Warn("failed to spawn command", "program", program, "error", err)
	}
}
