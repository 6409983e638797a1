package dialogue

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDirective = errors.New("unknown directive")
	ErrAmbienceActive   = errors.New("ambience already playing, directive ignored")
	ErrNoScene          = errors.New("no scene bound")
	ErrNoAmbience       = errors.New("no ambience loop configured")
	ErrAmbienceSilent   = errors.New("ambience has no clips to play")
	ErrNoScriptSource   = errors.New("no script source configured")
	ErrInvalidOptions   = errors.New("invalid controller options")
)

func errMissing(what string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidOptions, what)
}
