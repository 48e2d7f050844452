// internal/lobby/errors.go
package lobby

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel returned by RuntimeStore implementations when a
// key does not exist. The countdown orchestrator treats it as an abort
// signal; handlers surface it as a not_found frame.
var ErrNotFound = errors.New("not found")

// Stable error codes the client can branch on. These travel in the "code"
// field of error frames and never change meaning.
const (
	CodeNotAuthenticated = "not_authenticated"
	CodeNotCreator       = "not_creator"
	CodeLobbyFull        = "lobby_full"
	CodeNeedAtLeast      = "need_at_least"
	CodeJoinFailed       = "join_failed"
	CodeNotFound         = "not_found"
	CodeMetadataMissing  = "metadata_missing"
	CodeInvalidMessage   = "invalid_message"
	CodeGameError        = "game_error"
)

// Error is a validation or authorization failure meant for the originating
// connection only. Anything else (store outages, marshal failures) stays an
// ordinary error: logged and abandoned, never broadcast.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errf builds a coded Error with a formatted message.
func Errf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// UserError extracts the coded error from err, if it carries one. A bare
// ErrNotFound maps to the not_found code so missing lobbies read cleanly at
// the handler boundary.
func UserError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	if errors.Is(err, ErrNotFound) {
		return &Error{Code: CodeNotFound, Message: "not found"}, true
	}
	return nil, false
}
