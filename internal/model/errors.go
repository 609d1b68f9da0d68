package model

import (
	"errors"
	"fmt"
	"strings"
)

// EntityMatch is one candidate entity surfaced by an ambiguous name lookup.
type EntityMatch struct {
	NomeEntidade string `json:"nome_entidade"`
	CNPJ8        string `json:"cnpj_8"`
}

// EntityNotFoundError indicates that no entity matched the supplied
// identifier, in either the tax-ID or the name lookup path.
type EntityNotFoundError struct {
	Identifier  string
	Suggestions []string
}

func (e *EntityNotFoundError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("entity not found for identifier %q (closest names: %s)",
			e.Identifier, strings.Join(e.Suggestions, "; "))
	}
	return fmt.Sprintf("entity not found for identifier %q", e.Identifier)
}

// AmbiguousIdentifierError indicates that a name matched more than one
// distinct entity. Matches carries the candidates so the caller can
// disambiguate without re-querying.
type AmbiguousIdentifierError struct {
	Identifier string
	Matches    []EntityMatch
}

func (e *AmbiguousIdentifierError) Error() string {
	names := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		names = append(names, fmt.Sprintf("%s (%s)", m.NomeEntidade, m.CNPJ8))
	}
	return fmt.Sprintf("identifier %q matches %d entities: %s",
		e.Identifier, len(e.Matches), strings.Join(names, "; "))
}

// DataUnavailableError indicates that a valid query has no backing data:
// a scope with no conglomerate code, an account or attribute absent from
// the source dictionary, or a code/account/date combination with no rows.
type DataUnavailableError struct {
	Entity string
	Scope  Scope // empty when the failure is not scope-related
	Reason string
}

func (e *DataUnavailableError) Error() string {
	var b strings.Builder
	b.WriteString("data unavailable")
	if e.Entity != "" {
		fmt.Fprintf(&b, " for entity %q", e.Entity)
	}
	if e.Scope != "" {
		fmt.Fprintf(&b, " at scope %q", e.Scope)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// InvalidScopeError indicates a scope string outside the recognized set.
// This is a caller error and is never downgraded to a warning.
type InvalidScopeError struct {
	Scope string
	Valid []Scope
}

func (e *InvalidScopeError) Error() string {
	valid := make([]string, 0, len(e.Valid))
	for _, s := range e.Valid {
		valid = append(valid, string(s))
	}
	return fmt.Sprintf("invalid scope %q (valid: %s)", e.Scope, strings.Join(valid, ", "))
}

// IsEntityNotFound reports whether err (or any error in its chain) is an
// EntityNotFoundError.
func IsEntityNotFound(err error) bool {
	var e *EntityNotFoundError
	return errors.As(err, &e)
}

// IsAmbiguousIdentifier reports whether err is an AmbiguousIdentifierError.
func IsAmbiguousIdentifier(err error) bool {
	var e *AmbiguousIdentifierError
	return errors.As(err, &e)
}

// IsDataUnavailable reports whether err is a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var e *DataUnavailableError
	return errors.As(err, &e)
}

// IsInvalidScope reports whether err is an InvalidScopeError.
func IsInvalidScope(err error) bool {
	var e *InvalidScopeError
	return errors.As(err, &e)
}

// IsResolutionError reports whether err is one of the two identifier
// resolution failures (not found, ambiguous).
func IsResolutionError(err error) bool {
	return IsEntityNotFound(err) || IsAmbiguousIdentifier(err)
}

// IsTolerable reports whether err is one of the domain errors the tolerant
// orchestration layers convert to a warning plus an absent-value marker.
// Invalid scopes and unexpected errors are never tolerable.
func IsTolerable(err error) bool {
	return IsResolutionError(err) || IsDataUnavailable(err)
}
