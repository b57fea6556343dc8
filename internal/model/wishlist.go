package model

import "time"

// Wishlist models an entry in the `wishlists` table. A (user, movie)
// pair appears at most once; the database enforces this with a unique
// index so concurrent duplicate adds cannot slip through.
type Wishlist struct {
	ID        uint64
	UserID    uint64
	MovieID   uint64
	CreatedAt time.Time
}
