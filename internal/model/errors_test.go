package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	notFound := &EntityNotFoundError{Identifier: "BANCO INEXISTENTE"}
	ambiguous := &AmbiguousIdentifierError{
		Identifier: "BANCO",
		Matches: []EntityMatch{
			{NomeEntidade: "BANCO DO BRASIL", CNPJ8: "00000000"},
			{NomeEntidade: "BANCO BRADESCO", CNPJ8: "60746948"},
		},
	}
	unavailable := &DataUnavailableError{Entity: "60701190", Scope: ScopeFinanceiro, Reason: "no financial conglomerate code"}
	invalidScope := &InvalidScopeError{Scope: "cascata", Valid: ValidScopes()}

	assert.True(t, IsEntityNotFound(notFound))
	assert.True(t, IsAmbiguousIdentifier(ambiguous))
	assert.True(t, IsDataUnavailable(unavailable))
	assert.True(t, IsInvalidScope(invalidScope))

	assert.False(t, IsEntityNotFound(ambiguous))
	assert.False(t, IsDataUnavailable(invalidScope))
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	// Predicates must see through wrapping so tolerant layers can match
	// errors that crossed an infrastructure boundary.
	wrapped := eris.Wrap(&EntityNotFoundError{Identifier: "x"}, "comparator: resolve")
	assert.True(t, IsEntityNotFound(wrapped))
	assert.True(t, IsResolutionError(wrapped))
	assert.True(t, IsTolerable(wrapped))
}

func TestIsTolerable(t *testing.T) {
	assert.True(t, IsTolerable(&EntityNotFoundError{Identifier: "x"}))
	assert.True(t, IsTolerable(&AmbiguousIdentifierError{Identifier: "x"}))
	assert.True(t, IsTolerable(&DataUnavailableError{Reason: "no rows"}))

	// Caller errors and unexpected failures are never tolerated.
	assert.False(t, IsTolerable(&InvalidScopeError{Scope: "bogus"}))
	assert.False(t, IsTolerable(eris.New("disk on fire")))
	assert.False(t, IsTolerable(nil))
}

func TestErrorMessages(t *testing.T) {
	ambiguous := &AmbiguousIdentifierError{
		Identifier: "banco",
		Matches: []EntityMatch{
			{NomeEntidade: "BANCO A", CNPJ8: "11111111"},
			{NomeEntidade: "BANCO B", CNPJ8: "22222222"},
		},
	}
	msg := ambiguous.Error()
	assert.Contains(t, msg, "banco")
	assert.Contains(t, msg, "BANCO A (11111111)")
	assert.Contains(t, msg, "2 entities")

	invalid := &InvalidScopeError{Scope: "cascata", Valid: ValidScopes()}
	assert.Contains(t, invalid.Error(), "individual, prudencial, financeiro")
}
