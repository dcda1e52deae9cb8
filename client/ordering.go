package client

import (
	"sort"
	"strings"

	"reelist/models"
)

// Order sorts watchlists into the display order every snapshot uses: the
// default list first, then lists holding items before empty ones, then
// case-insensitive name ascending, with newer createdAt winning ties. The
// sort is deterministic and idempotent; applying it to an already ordered
// slice leaves it unchanged.
func Order(lists []models.WatchlistWithItems) []models.WatchlistWithItems {
	sorted := make([]models.WatchlistWithItems, len(lists))
	copy(sorted, lists)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}

		aEmpty, bEmpty := len(a.Items) == 0, len(b.Items) == 0
		if aEmpty != bEmpty {
			return bEmpty
		}

		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}

		return a.CreatedAt.After(b.CreatedAt)
	})

	return sorted
}
