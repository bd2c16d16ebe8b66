package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/youth-camp-api/internal/models"
)

func sampleRegistrations() []models.Registration {
	return []models.Registration{
		{ID: "r1", Name: "Abel Bekele", Phone: "0912345678", Grade: "grade-9", Church: "Mekane Yesus", ParticipantLocation: models.LocationHawassa, Status: models.RegistrationPending},
		{ID: "r2", Name: "Hana Tesfaye", Phone: "0922000111", Grade: "grade-11", Church: "  mekane yesus ", ParticipantLocation: models.LocationAddisAbaba, Status: models.RegistrationApproved},
		{ID: "r3", Name: "Liya Girma", Phone: "0933444555", Grade: "grade-9", Church: "Kale Heywet", ParticipantLocation: "Adama", Status: models.RegistrationRejected},
		{ID: "r4", Name: "Dawit Alemu", Phone: "0944555666", Grade: "grade-12", Church: "Meserete Kristos", ParticipantLocation: models.LocationHawassa, Status: models.RegistrationApproved},
	}
}

func ids(regs []models.Registration) []string {
	out := make([]string, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterRegistrationsDefaultsAreIdentity(t *testing.T) {
	regs := sampleRegistrations()

	assert.Equal(t, regs, FilterRegistrations(regs, models.RegistrationCriteria{}))
	all := models.RegistrationCriteria{Status: "all", Grade: "all", Church: "all", Location: "all"}
	assert.Equal(t, regs, FilterRegistrations(regs, all))
}

func TestFilterRegistrationsSearchAnyField(t *testing.T) {
	regs := sampleRegistrations()

	cases := []struct {
		term string
		want []string
	}{
		{"ABEL", []string{"r1"}},
		{"0922", []string{"r2"}},
		{"kale", []string{"r3"}},
		{"addis", []string{"r2"}},
		{"hawassa", []string{"r1", "r4"}},
		{"nobody", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			got := FilterRegistrations(regs, models.RegistrationCriteria{Search: tc.term})
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestFilterRegistrationsExactFields(t *testing.T) {
	regs := sampleRegistrations()

	got := FilterRegistrations(regs, models.RegistrationCriteria{Status: "approved"})
	assert.Equal(t, []string{"r2", "r4"}, ids(got))

	got = FilterRegistrations(regs, models.RegistrationCriteria{Status: "Approved"})
	assert.Empty(t, got)

	got = FilterRegistrations(regs, models.RegistrationCriteria{Grade: "grade-9"})
	assert.Equal(t, []string{"r1", "r3"}, ids(got))

	got = FilterRegistrations(regs, models.RegistrationCriteria{Location: models.LocationHawassa, Status: "approved"})
	assert.Equal(t, []string{"r4"}, ids(got))
}

func TestFilterRegistrationsChurchIsFoldedAndTrimmed(t *testing.T) {
	regs := sampleRegistrations()

	got := FilterRegistrations(regs, models.RegistrationCriteria{Church: "MEKANE YESUS"})
	assert.Equal(t, []string{"r1", "r2"}, ids(got))

	got = FilterRegistrations(regs, models.RegistrationCriteria{Church: "2. Kale Heywet"})
	assert.Equal(t, []string{"r3"}, ids(got))

	got = FilterRegistrations(regs, models.RegistrationCriteria{Church: "3. "})
	assert.Empty(t, got)
}

func TestFilterRegistrationsIsIdempotent(t *testing.T) {
	regs := sampleRegistrations()
	criteria := []models.RegistrationCriteria{
		{},
		{Search: "a"},
		{Status: "approved", Location: models.LocationHawassa},
		{Church: "mekane yesus", Grade: "grade-11"},
	}
	for _, c := range criteria {
		once := FilterRegistrations(regs, c)
		assert.Equal(t, once, FilterRegistrations(once, c))
	}
}

func TestFilterRegistrationsDoesNotMutateInput(t *testing.T) {
	regs := sampleRegistrations()
	before := ids(regs)
	_ = FilterRegistrations(regs, models.RegistrationCriteria{Status: "approved"})
	assert.Equal(t, before, ids(regs))
}

func TestFacets(t *testing.T) {
	facets := Facets(sampleRegistrations())

	assert.Equal(t, models.CanonicalGrades, facets.Grades)
	assert.Equal(t, []string{models.LocationHawassa, models.LocationAddisAbaba, "Adama"}, facets.Locations)
	assert.Equal(t, []string{"Mekane Yesus", "Kale Heywet", "Meserete Kristos"}, facets.Churches)

	empty := Facets(nil)
	assert.Equal(t, models.CanonicalLocations, empty.Locations)
	assert.Empty(t, empty.Churches)
}

func TestFilterMemo(t *testing.T) {
	regs := sampleRegistrations()
	var memo FilterMemo
	c := models.RegistrationCriteria{Status: "approved"}

	first := memo.Filter(regs, c)
	second := memo.Filter(regs, c)
	require.Len(t, first, 2)
	assert.Same(t, &first[0], &second[0])

	replaced := append([]models.Registration(nil), regs...)
	replaced[0].Status = models.RegistrationApproved
	third := memo.Filter(replaced, c)
	assert.Equal(t, []string{"r1", "r2", "r4"}, ids(third))

	memo.Reset()
	assert.Equal(t, []string{"r1", "r2", "r4"}, ids(memo.Filter(replaced, c)))
}
