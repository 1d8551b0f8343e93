// Package game holds the Zashapon card model shared by the browser driver
// and the sheet recorder.
package game

import (
	"regexp"
	"strings"
)

// CardNames is the closed set of collectible cards the game can award.
// Collection maps and sheet columns are keyed by these exact titles.
var CardNames = []string{
	"Daruma Zama",
	"Daruma Monk",
	"Daruma Wave",
	"Daruma Devil",
	"Daruma Fox",
	"Daruma Lantern",
	"Daruma Cat",
	"Daruma Kumo",
	"Daruma Sakura",
}

// Collection maps a card name to whether the profile owns at least one copy.
type Collection map[string]bool

// NewCollection returns a collection with every known card marked not owned.
func NewCollection() Collection {
	c := make(Collection, len(CardNames))
	for _, name := range CardNames {
		c[name] = false
	}
	return c
}

// Owned returns the names of owned cards, in CardNames order.
func (c Collection) Owned() []string {
	var owned []string
	for _, name := range CardNames {
		if c[name] {
			owned = append(owned, name)
		}
	}
	return owned
}

// badgeRe matches ownership badges like "x1", "x2", "X10".
var badgeRe = regexp.MustCompile(`(?i)^x\d+$`)

// IsOwnedBadge reports whether a badge label indicates an owned quantity.
func IsOwnedBadge(text string) bool {
	return badgeRe.MatchString(strings.TrimSpace(text))
}

// ColumnKey converts a card name to its config column key,
// e.g. "Daruma Fox" -> "daruma_fox".
func ColumnKey(cardName string) string {
	return strings.ToLower(strings.ReplaceAll(cardName, " ", "_"))
}
