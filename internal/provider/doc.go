// Package provider is the gateway between resource identifiers and the pets
// table.
//
// Callers address data with identifiers such as
//
//	content://shelter/pets      the whole collection
//	content://shelter/pets/42   the pet with row id 42
//
// [PetProvider] classifies the identifier with an immutable router, validates
// the input against package schema, and runs the statement through the store.
// Identifier and validation problems are reported before anything is written;
// store failures are returned as they happened, never retried.
//
// Every error is a *[Error]; match causes with [errors.Is]:
//
//	_, err := p.Insert(ctx, "content://shelter/pets", provider.Values{"name": ""})
//	errors.Is(err, provider.ErrValidation) // true
package provider
