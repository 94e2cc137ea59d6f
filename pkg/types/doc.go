// Package types defines the contracts shared by the regkeys navigation layer
// and its storage backends.
//
// The package exposes:
//   - Typed errors with stable categories (not found, type mismatch,
//     backend failure, close failure, use after teardown, ...).
//   - RegType, the Windows registry value type enumeration.
//   - Value, a tagged union over the payloads a backend can return, with
//     checked accessors instead of unchecked casts.
//   - Backend and Handle, the minimal primitives a store must provide to be
//     navigated by package regkey.
//
// This package has no dependencies beyond the standard library.
package types
