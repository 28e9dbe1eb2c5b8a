package tools

import "errors"

var (
	ErrAlreadyInstalled        = errors.New("version already installed")
	ErrNotInstalled            = errors.New("version not installed")
	ErrDownloadFailed          = errors.New("download failed")
	ErrUnexpectedArchiveLayout = errors.New("unexpected structure in the extracted archive")
	ErrUsage                   = errors.New("invalid argument")
	ErrUnknownCommand          = errors.New("unknown command")
	// ErrStoreBusy 表示另一个进程（或协程）正在修改版本目录
	ErrStoreBusy = errors.New("version store is busy: another operation is in progress")
)

// Exit codes returned by the command line tool.
const (
	ExitOK = iota
	ExitFailure
	ExitUsage
	ExitNotInstalled
	ExitAlreadyInstalled
	ExitDownloadFailed
	ExitArchiveLayout
	ExitBusy
)

// ExitCode maps an error returned by a Manager operation to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage), errors.Is(err, ErrUnknownCommand):
		return ExitUsage
	case errors.Is(err, ErrNotInstalled):
		return ExitNotInstalled
	case errors.Is(err, ErrAlreadyInstalled):
		return ExitAlreadyInstalled
	case errors.Is(err, ErrDownloadFailed):
		return ExitDownloadFailed
	case errors.Is(err, ErrUnexpectedArchiveLayout):
		return ExitArchiveLayout
	case errors.Is(err, ErrStoreBusy):
		return ExitBusy
	default:
		return ExitFailure
	}
}
