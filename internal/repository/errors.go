// Package repository implements the persistence layer over MySQL. The
// sentinel errors defined here let the service layer distinguish failure
// scenarios without inspecting SQL errors: a token that was never issued, a
// token past its expiry and a token that was already redeemed all need
// different handling even though all three end up as a 401 at the HTTP
// boundary.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique email
// constraint on users.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrTokenExpired is returned when a token row exists but is past its
// expiry timestamp.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenUsed is returned when a token row exists but was already
// redeemed or revoked.
var ErrTokenUsed = errors.New("token already used")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as an illegal request status transition.
var ErrConflict = errors.New("conflict")
