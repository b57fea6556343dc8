// Package access implements the subscription based visibility rules for
// the movie catalog. The rules are pure functions over a Viewer value so
// they can be evaluated anywhere: handlers use them for single-item
// checks while repositories translate the same rule into a SQL
// predicate for list queries.
package access

import "github.com/movieexplorer/movie-explorer-api/internal/model"

// Viewer captures the facts about the caller that the policy needs.
// The zero value represents an anonymous caller.
type Viewer struct {
	Authenticated bool
	UserID        uint64
	Role          string
	Premium       bool
}

// Anonymous is the viewer used for requests without a bearer token.
var Anonymous = Viewer{}

// IsVisible reports whether a catalog item with the given premium flag
// may be shown to the viewer. Non-premium items are visible to
// everyone, including anonymous callers. Premium items require a
// premium plan; an anonymous caller, a missing subscription and a
// basic plan are all equivalent here.
func IsVisible(v Viewer, premium bool) bool {
	if !premium {
		return true
	}
	return v.Premium
}

// CanMutateCatalog reports whether the viewer may create, update or
// delete catalog items. Only authenticated supervisors qualify.
func CanMutateCatalog(v Viewer) bool {
	return v.Authenticated && v.Role == model.RoleSupervisor
}
