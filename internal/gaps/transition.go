package gaps

import (
	"time"

	"github.com/JaimeStill/lacuna/internal/review"
)

var workflow = review.NewMachine(map[Status][]Status{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusResolved},
})

// Transition moves g to the adjacent status to.
func Transition(g *Gap, to Status, now time.Time) error {
	if err := workflow.Check(g.Status, to); err != nil {
		return err
	}

	g.Status = to
	if to == StatusResolved {
		t := now
		g.ResolvedAt = &t
	}
	g.Version++
	g.UpdatedAt = now
	return nil
}

// Resolve walks g through every intermediate status to resolved.
// Already-resolved gaps are left unchanged.
func Resolve(g *Gap, now time.Time) error {
	if g.Status == StatusResolved {
		return nil
	}
	for _, s := range workflow.Path(g.Status, StatusResolved) {
		if err := Transition(g, s, now); err != nil {
			return err
		}
	}
	return nil
}
