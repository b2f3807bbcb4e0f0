package catalog

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry describes one product: canonical key, display name, unit price and
// the free-text synonyms customers use for it.
type Entry struct {
	Key     string
	Title   string
	Price   float64
	Aliases []string
}

// Catalog is the immutable product table. Built once at startup and passed
// into the conversation engine.
type Catalog struct {
	entries []Entry
	prices  map[string]float64
	titles  map[string]string
}

// New builds a catalog from a fixed set of entries.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: entries,
		prices:  make(map[string]float64, len(entries)),
		titles:  make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		c.prices[e.Key] = e.Price
		c.titles[e.Key] = e.Title
	}
	return c
}

var defaultEntries = []Entry{
	{
		Key:   "vino tinto scala tempranillo",
		Title: "Vino Tinto Scala – Tempranillo",
		Price: 290,
		Aliases: []string{
			"tempranillo", "vino tinto", "tinto scala", "scala tempranillo",
		},
	},
	{
		Key:   "vino espumoso scala moscatel",
		Title: "Vino Espumoso Scala – Moscatel de Alejandría",
		Price: 290,
		Aliases: []string{
			"espumoso", "moscatel", "vino espumoso", "scala moscatel",
			"moscatel de alejandria",
		},
	},
}

// Default returns the Scala Dei wine catalog.
func Default() *Catalog {
	return New(defaultEntries)
}

// Price returns the unit price for a canonical key.
func (c *Catalog) Price(key string) (float64, bool) {
	price, ok := c.prices[key]
	return price, ok
}

var titleCaser = cases.Title(language.Spanish)

// Title returns the display name for a canonical key, falling back to a
// title-cased version of the key itself.
func (c *Catalog) Title(key string) string {
	if title, ok := c.titles[key]; ok {
		return title
	}
	return titleCaser.String(key)
}

// Resolve maps free text to a canonical catalog key. The input is
// normalized and compared against every alias; if no alias matches, the
// normalized text itself is tried as a literal key.
func (c *Catalog) Resolve(text string) (string, bool) {
	n := Normalize(text)
	for _, e := range c.entries {
		for _, alias := range e.Aliases {
			if n == Normalize(alias) {
				return e.Key, true
			}
		}
	}
	if _, ok := c.prices[n]; ok {
		return n, true
	}
	return "", false
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
)

// Normalize lowercases, trims, collapses whitespace and strips the accented
// vowels customers type inconsistently.
func Normalize(s string) string {
	s = accentReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(s), " ")
}

// ParseQuantity extracts the first run of decimal digits anywhere in the
// text, so "quiero 3 botellas" resolves to 3. Defaults to 1 when no digits
// are present.
func ParseQuantity(s string) int {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return 1
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	qty, err := strconv.Atoi(s[start:end])
	if err != nil || qty <= 0 {
		return 1
	}
	return qty
}
