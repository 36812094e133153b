package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Person is someone who can be assigned to tasks. The ID is a slug of the
// name at creation time and stays stable through renames.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Group is a task grouping with a display color. Tasks reference groups by
// name, not id; renaming a group requires rewriting every task's group field.
type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)
var slugDashes = regexp.MustCompile(`-+`)

// Slugify lowercases, hyphenates whitespace and strips everything that is not
// alphanumeric or a hyphen.
func Slugify(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = strings.Join(strings.Fields(out), "-")
	out = slugStrip.ReplaceAllString(out, "")
	return slugDashes.ReplaceAllString(out, "-")
}

// UniqueSlug returns slug, or slug-2, slug-3, ... until it is free.
func UniqueSlug(slug string, taken map[string]bool) string {
	if !taken[slug] {
		return slug
	}
	for n := 2; ; n++ {
		candidate := slug + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// GroupColors is the palette cycled for auto-registered groups.
var GroupColors = []string{
	"#5B8A72", "#6B8FBF", "#C5952E", "#9B6FB5", "#DC6B3F",
	"#4A8C9F", "#B5694D", "#7B886E", "#8B6EA8", "#CC7A6E",
	"#5C7EA3", "#9D8B5E", "#6D9B8F", "#A67BAB", "#C49058",
}

// FallbackGroupColor is used for tasks whose group is not in the group list.
const FallbackGroupColor = "#78716C"

// DefaultGroups returns the group taxonomy seeded at first run.
func DefaultGroups() []Group {
	return []Group{
		{ID: "binnen", Name: "Binnen", Color: "#5B8A72"},
		{ID: "buiten", Name: "Buiten", Color: "#6B8FBF"},
		{ID: "pre-verkoop", Name: "Pre-verkoop", Color: "#C5952E"},
		{ID: "nieuw-huis", Name: "Nieuw huis", Color: "#9B6FB5"},
		{ID: "logistiek", Name: "Logistiek", Color: "#DC6B3F"},
	}
}

// DefaultLocations returns the location taxonomy seeded at first run.
func DefaultLocations() []string {
	return []string{
		"Woonkamer", "Keuken", "Badkamer", "Slaapkamer", "Tuin",
		"Schuur", "Zolder", "Hal", "Garage", "Overloop",
	}
}

// DefaultCategories returns the category taxonomy seeded at first run.
func DefaultCategories() []string {
	return []string{
		"Schilderwerk", "Timmerwerk", "Elektra", "Loodgieter",
		"Schoonmaak", "Verhuizen", "Reparatie", "Installatie",
	}
}

// GroupColor looks a group's color up by name or id.
func GroupColor(groups []Group, name string) string {
	for _, g := range groups {
		if g.Name == name || g.ID == name {
			return g.Color
		}
	}
	return FallbackGroupColor
}

// PersonName resolves a person id to its display name, falling back to the
// id itself so deleted references stay readable.
func PersonName(people []*Person, id string) string {
	if id == "" {
		return ""
	}
	for _, p := range people {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
