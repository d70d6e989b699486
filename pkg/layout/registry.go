package layout

import (
	"slices"
	"strings"

	"github.com/johnjohndoe/netmap/pkg/errors"
)

var registry = map[string]func() Algorithm{
	"fruchterman-reingold": func() Algorithm { return NewFruchtermanReingold() },
	"circle":               func() Algorithm { return Circle{} },
	"spiral":               func() Algorithm { return Spiral{} },
	"sinusoid-horizontal":  func() Algorithm { return Sinusoid{} },
	"sinusoid-vertical":    func() Algorithm { return Sinusoid{Vertical: true} },
	"grid":                 func() Algorithm { return Grid{} },
	"random":               func() Algorithm { return Random{Seed: 1} },
	"layered":              func() Algorithm { return Layered{} },
	"null":                 func() Algorithm { return Null{} },
}

var aliases = map[string]string{
	"fr":       "fruchterman-reingold",
	"force":    "fruchterman-reingold",
	"sinusoid": "sinusoid-horizontal",
	"dot":      "layered",
	"none":     "null",
}

// ByName returns a new algorithm with default settings. Names are matched
// case-insensitively; a few short aliases such as "fr" and "dot" are
// accepted.
func ByName(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[key]; ok {
		key = a
	}
	mk, ok := registry[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound,
			"unknown layout %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return mk(), nil
}

// Names lists the canonical algorithm names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
