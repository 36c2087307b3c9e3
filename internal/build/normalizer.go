// Package build converts assistant-supplied build payloads into the
// canonical component list and computes derived prices.
package build

import (
	"strings"

	"github.com/RachedNaguez/PcBuilder/internal/model"
)

// icons maps a component type to the icon key the UI renders. Keys are
// matched case-insensitively.
var icons = map[string]string{
	"cpu":         "cpu",
	"gpu":         "monitor",
	"ram":         "memory-stick",
	"storage":     "hard-drive",
	"psu":         "power",
	"motherboard": "server",
	"cooler":      "thermometer",
	"case fan":    "fan",
	"case":        "box",
}

// FallbackIcon is used for component types with no table entry.
const FallbackIcon = "zap"

// IconFor returns the icon key for a component type.
func IconFor(componentType string) string {
	if icon, ok := icons[strings.ToLower(strings.TrimSpace(componentType))]; ok {
		return icon
	}
	return FallbackIcon
}

// Normalize flattens a component set of either shape into the canonical
// ordered list. Shape A keeps its sequence order; Shape B keeps the source
// object's key order and takes each key as the component type. Missing
// fields stay zero-valued; an unrecognized shape yields an empty list. The
// same input always yields the same output order.
func Normalize(set model.ComponentSet) []model.Component {
	out := make([]model.Component, 0, len(set.List)+len(set.Keyed))

	for i, rec := range set.List {
		out = append(out, fromRecord(rec, rec.Type, i))
	}
	for i, kc := range set.Keyed {
		out = append(out, fromRecord(kc.Record, kc.Key, i))
	}
	return out
}

func fromRecord(rec model.ComponentRecord, componentType string, index int) model.Component {
	c := model.Component{
		Name:        rec.Name,
		Type:        componentType,
		Price:       rec.Price,
		Specs:       rec.Specs,
		Icon:        rec.Icon,
		SourceIndex: index,
	}
	if c.Type == "" {
		c.Type = rec.Type
	}
	if c.Specs == nil {
		c.Specs = model.SpecList{}
	}
	if c.Icon == "" {
		c.Icon = IconFor(c.Type)
	}
	return c
}
