package service

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/noah-isme/youth-camp-api/internal/models"
)

// enumerationPrefix matches list numbering such as "3. " in church filter values.
var enumerationPrefix = regexp.MustCompile(`^\d+\.\s*`)

func unconstrained(v string) bool {
	return v == "" || v == "all"
}

// FilterRegistrations returns the registrations matching every criterion, in
// their original order. It never mutates regs.
func FilterRegistrations(regs []models.Registration, c models.RegistrationCriteria) []models.Registration {
	fold := cases.Fold()
	term := fold.String(c.Search)
	filterChurch := !unconstrained(c.Church)
	church := ""
	if filterChurch {
		church = fold.String(strings.TrimSpace(enumerationPrefix.ReplaceAllString(c.Church, "")))
	}

	out := make([]models.Registration, 0, len(regs))
	for _, reg := range regs {
		if term != "" && !matchesSearch(fold, reg, term) {
			continue
		}
		if !unconstrained(c.Status) && string(reg.Status) != c.Status {
			continue
		}
		if !unconstrained(c.Grade) && reg.Grade != c.Grade {
			continue
		}
		if filterChurch && fold.String(strings.TrimSpace(reg.Church)) != church {
			continue
		}
		if !unconstrained(c.Location) && reg.ParticipantLocation != c.Location {
			continue
		}
		out = append(out, reg)
	}
	return out
}

// matchesSearch is true when any searchable field contains term.
func matchesSearch(fold cases.Caser, reg models.Registration, term string) bool {
	for _, field := range []string{reg.Name, reg.Phone, reg.Church, reg.ParticipantLocation} {
		if strings.Contains(fold.String(field), term) {
			return true
		}
	}
	return false
}

// Facets derives the filter option lists for regs.
func Facets(regs []models.Registration) models.RegistrationFacets {
	grades := make([]string, len(models.CanonicalGrades))
	copy(grades, models.CanonicalGrades)

	locations := make([]string, 0, len(models.CanonicalLocations)+2)
	seenLoc := make(map[string]struct{})
	for _, loc := range models.CanonicalLocations {
		locations = append(locations, loc)
		seenLoc[loc] = struct{}{}
	}

	fold := cases.Fold()
	churches := make([]string, 0)
	seenChurch := make(map[string]struct{})
	for _, reg := range regs {
		if loc := reg.ParticipantLocation; loc != "" {
			if _, ok := seenLoc[loc]; !ok {
				seenLoc[loc] = struct{}{}
				locations = append(locations, loc)
			}
		}
		name := strings.TrimSpace(reg.Church)
		if name == "" {
			continue
		}
		key := fold.String(name)
		if _, ok := seenChurch[key]; ok {
			continue
		}
		seenChurch[key] = struct{}{}
		churches = append(churches, name)
	}

	return models.RegistrationFacets{Grades: grades, Locations: locations, Churches: churches}
}

// FilterMemo caches the most recent FilterRegistrations call. A slice counts
// as unchanged when it has the same backing array and length, so callers must
// replace the slice (not edit it in place) when the data changes.
type FilterMemo struct {
	mu       sync.Mutex
	regs     []models.Registration
	criteria models.RegistrationCriteria
	result   []models.Registration
	valid    bool
}

// Filter returns the memoized result when regs and c match the previous call.
func (m *FilterMemo) Filter(regs []models.Registration, c models.RegistrationCriteria) []models.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.criteria == c && sameSlice(m.regs, regs) {
		return m.result
	}
	m.regs = regs
	m.criteria = c
	m.result = FilterRegistrations(regs, c)
	m.valid = true
	return m.result
}

// Reset drops the memoized result.
func (m *FilterMemo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs, m.result, m.valid = nil, nil, false
}

func sameSlice(a, b []models.Registration) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
