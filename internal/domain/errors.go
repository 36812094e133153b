package domain

import "errors"

// Domain errors.
var (
	ErrNotFound           = errors.New("document not found")
	ErrConflict           = errors.New("version token is stale")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubtaskNotFound    = errors.New("subtask not found")
	ErrPersonNotFound     = errors.New("person not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrDuplicateEntry     = errors.New("entry already exists")
	ErrNotConfigured      = errors.New("no remote store configured")
	ErrRemoteUnreachable  = errors.New("remote store is unreachable")
	ErrNoSnapshot         = errors.New("no clean snapshot to restore")
	ErrUnknownUser        = errors.New("unknown username or wrong password")
	ErrUnknownTaxonomy    = errors.New("unknown taxonomy list")
	ErrInvalidBundle      = errors.New("bundle is missing a tasks array")
	ErrPromptActive       = errors.New("another end-of-task prompt is active")
	ErrDaemonStopped      = errors.New("scheduler daemon is stopped")
	ErrUnsupportedBackend = errors.New("unsupported remote backend")
)
