// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish
// failure scenarios without inspecting driver errors: not-found
// sentinels map to HTTP 404, the uniqueness sentinels to 409 or 422
// depending on the endpoint contract.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique email
// constraint on the users table.
var ErrEmailExists = errors.New("email already exists")

// ErrMobileExists is returned when an insert violates the unique
// mobile number constraint on the users table.
var ErrMobileExists = errors.New("mobile number already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrMovieNotFound is returned when a movie lookup matches no row.
// Repositories that apply the visibility predicate return it for
// invisible movies too, so callers cannot tell a hidden premium title
// from a missing one.
var ErrMovieNotFound = errors.New("movie not found")

// ErrSubscriptionNotFound is returned when a user has no subscription
// row, which can only happen for accounts in a transient state.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// ErrAlreadyInWishlist is returned when the (user, movie) pair already
// has a wishlist row.
var ErrAlreadyInWishlist = errors.New("movie is already in your wishlist")

// ErrWishlistNotFound is returned when removing a wishlist entry that
// does not exist.
var ErrWishlistNotFound = errors.New("movie not found in your wishlist")
