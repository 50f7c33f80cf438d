// Package recommend selects which unseen book to suggest to a session.
package recommend

import (
	"fmt"
	"math/rand"

	apperrors "github.com/ValdezFOmar/GoodReads/pkg/errors"
)

// Pick returns one book ID drawn uniformly at random from universe \ seen.
// When the session has already seen every book there is nothing left to
// avoid, so Pick falls back to a uniform draw over the whole universe. The
// difference set is materialised up front; there is no rejection loop, so
// Pick always terminates. An empty universe is a caller bug and is reported
// as ErrInvalidInput.
func Pick(seen map[string]struct{}, universe []string) (string, error) {
	if len(universe) == 0 {
		return "", fmt.Errorf("empty universe: %w", apperrors.ErrInvalidInput)
	}

	unseen := make([]string, 0, len(universe))
	for _, id := range universe {
		if _, ok := seen[id]; !ok {
			unseen = append(unseen, id)
		}
	}
	if len(unseen) == 0 {
		return universe[rand.Intn(len(universe))], nil
	}
	return unseen[rand.Intn(len(unseen))], nil
}

// SeenSet collapses a view history (which may hold non-consecutive repeats)
// into the set form Pick expects.
func SeenSet(history []string) map[string]struct{} {
	seen := make(map[string]struct{}, len(history))
	for _, id := range history {
		seen[id] = struct{}{}
	}
	return seen
}
