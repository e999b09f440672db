package holiday

import (
	"context"
	"time"
)

// Lister loads the holidays whose range intersects [from, to].
type Lister interface {
	ListOverlapping(ctx context.Context, from, to time.Time) ([]Holiday, error)
}

type Resolver struct {
	Store Lister
}

func NewResolver(store Lister) *Resolver {
	return &Resolver{Store: store}
}

// Resolve returns a holiday that covers date and applies to subject. When
// several match, the first one returned by the store wins.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, subject Subject) (Holiday, bool, error) {
	day := Day(date)
	holidays, err := r.Store.ListOverlapping(ctx, day, day)
	if err != nil {
		return Holiday{}, false, err
	}
	h, ok := Match(holidays, day, subject)
	return h, ok, nil
}

// Match is the in-memory form of Resolve over a preloaded list.
func Match(holidays []Holiday, date time.Time, subject Subject) (Holiday, bool) {
	for _, h := range holidays {
		if h.Covers(date) && h.AppliesTo(subject) {
			return h, true
		}
	}
	return Holiday{}, false
}
