package domain

import "fmt"

// CategoryMap maps human-readable activity names to the numeric identifiers
// the remote source expects. Built once at startup and never mutated.
type CategoryMap struct {
	ids map[string]int
}

// NewCategoryMap returns the fixed activity table published by the tender
// portal. The ids are an external contract and must not be reassigned.
func NewCategoryMap() CategoryMap {
	return CategoryMap{ids: map[string]int{
		"Trade": 1,
		"Contracting": 2,
		"Operation, maintenance, and cleaning of facilities": 3,
		"Real estate and land":                               4,
		"Industry, mining, and recycling":                    5,
		"Gas, water, and energy":                             6,
		"Mines, petroleum, and quarries":                     7,
		"Media, publishing, and distribution":                8,
		"Communications and Information Technology":          9,
		"Agriculture and Fishing":                            10,
		"Healthcare and Rehabilitation":                      11,
		"Education and Training":                             12,
		"Employment and Recruitment":                         13,
		"Security and Safety":                                14,
		"Transportation, Mailing and Storage":                15,
		"Consulting Professions":                             16,
		"Tourism, Restaurants, Hotels and Exhibition Organization": 17,
		"Finance, Financing and Insurance":                         18,
	}}
}

// Resolve returns the numeric id for a category name. Unknown names fail
// rather than defaulting to an arbitrary id.
func (c CategoryMap) Resolve(name string) (int, error) {
	id, ok := c.ids[name]
	if !ok {
		return 0, fmt.Errorf("unknown category %q", name)
	}
	return id, nil
}

// Names lists every known category name.
func (c CategoryMap) Names() []string {
	names := make([]string, 0, len(c.ids))
	for name := range c.ids {
		names = append(names, name)
	}
	return names
}
