//go:build !windows

package tools

// DefaultEnvPersister returns the persister for the running platform.
func DefaultEnvPersister() EnvPersister {
	return ManualPersister{}
}
