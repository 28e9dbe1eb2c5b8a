package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// EnvPersister makes an environment variable survive new shells.
// persisted is false when the platform needs the user to do it by hand.
type EnvPersister interface {
	PersistEnv(ctx context.Context, name, value string) (persisted bool, err error)
}

// SetxPersister stores user environment variables with the Windows setx command.
type SetxPersister struct {
	// Command 默认为 "setx"
	Command string
}

func (p SetxPersister) PersistEnv(ctx context.Context, name, value string) (bool, error) {
	command := p.Command
	if command == "" {
		command = "setx"
	}
	out, err := exec.CommandContext(ctx, command, name, value).CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("%s %s: %w: %s", command, name, err, strings.TrimSpace(string(out)))
	}
	return true, nil
}

// ManualPersister never edits anything; the user updates their shell profile.
type ManualPersister struct{}

func (ManualPersister) PersistEnv(context.Context, string, string) (bool, error) {
	return false, nil
}
