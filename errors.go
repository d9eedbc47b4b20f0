package bitecs

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var (
	ErrWorldInitialized    = eris.New("world already initialized")
	ErrWorldNotInitialized = eris.New("world not initialized")
	ErrRegistryFrozen      = eris.New("registry is frozen")
)

type DuplicateComponentError struct {
	Name string
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("component %q already registered", e.Name)
}

type UnknownComponentError struct {
	Name string
}

func (e UnknownComponentError) Error() string {
	return fmt.Sprintf("component %q is not registered", e.Name)
}

type UnknownArchetypeError struct {
	Name string
}

func (e UnknownArchetypeError) Error() string {
	return fmt.Sprintf("entity archetype %q is not defined", e.Name)
}

type DuplicateSystemError struct {
	Name string
}

func (e DuplicateSystemError) Error() string {
	return fmt.Sprintf("system name %q already in use", e.Name)
}

type SystemNotFoundError struct {
	Name string
}

func (e SystemNotFoundError) Error() string {
	return fmt.Sprintf("system %q not found", e.Name)
}

type UnregisteredSystemError struct {
	Name string
}

func (e UnregisteredSystemError) Error() string {
	return fmt.Sprintf("system type %q is not registered", e.Name)
}

// CorruptionError reports a broken internal invariant.
type CorruptionError struct {
	Msg string
}

func (e CorruptionError) Error() string {
	return "structural corruption: " + e.Msg
}

// invariant checks cond. A failed check panics in strict mode and is logged
// otherwise; callers must abort the operation when it returns false.
func invariant(cond bool, logger *zerolog.Logger, msg string) bool {
	if cond {
		return true
	}
	if Config.strict {
		panic(eris.Wrap(CorruptionError{Msg: msg}, "invariant violated"))
	}
	logger.Error().Str("invariant", msg).Msg("structural corruption detected, operation skipped")
	return false
}
