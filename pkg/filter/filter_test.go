package filter

import (
	"testing"
	"time"

	"evex/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleEvents() []models.Event {
	return []models.Event{
		{ID: 1, Title: "Go Meetup", Description: "concurrency talk", Category: ptr(1), HostUniversity: ptr(10), Status: models.EventPublished, CategoryName: "Technology"},
		{ID: 2, Title: "Startup Pitch", Description: "founders", Category: ptr(2), HostUniversity: ptr(11), Status: models.EventDraft, UniversityName: "LUMS"},
		{ID: 3, Title: "Hackathon", Description: "48 hours of GO", Category: ptr(1), HostUniversity: ptr(11), Status: models.EventPublished},
		{ID: 4, Title: "Career Fair", Description: "jobs", Status: models.EventCancelled},
		{ID: 5, Title: "Cricket", Description: "sports day", Status: models.EventPublished},
		{ID: 6, Title: "Seminar", Description: "ethics", Status: models.EventPublished},
	}
}

func ids(events []models.Event) []int {
	out := []int{}
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestEvents(t *testing.T) {
	events := sampleEvents()

	assert.Len(t, Events(events, EventFilter{}), len(events))
	assert.Equal(t, []int{1, 3}, ids(Events(events, EventFilter{Search: "go"})))
	assert.Empty(t, Events(events, EventFilter{Search: "technology"}))
	assert.Empty(t, Events(events, EventFilter{Search: "lums"}))
	assert.Equal(t, []int{1, 3}, ids(Events(events, EventFilter{Category: 1})))
	assert.Equal(t, []int{3}, ids(Events(events, EventFilter{Category: 1, University: 11})))
	assert.Equal(t, []int{4}, ids(Events(events, EventFilter{Status: models.EventCancelled})))
	assert.Empty(t, Events(events, EventFilter{Search: "nothing like this"}))
}

func TestEvents_SearchScopes(t *testing.T) {
	events := sampleEvents()

	assert.Equal(t, []int{1}, ids(Events(events, EventFilter{Search: "technology", Scope: ScopeCatalog})))
	assert.Equal(t, []int{2}, ids(Events(events, EventFilter{Search: "lums", Scope: ScopeCatalog})))
	assert.Equal(t, []int{3}, ids(Events(events, EventFilter{Search: "hours", Scope: ScopeCatalog})))

	assert.Equal(t, []int{1}, ids(Events(events, EventFilter{Search: "go", Scope: ScopeTitle})))
	assert.Empty(t, Events(events, EventFilter{Search: "concurrency", Scope: ScopeTitle}))
}

func TestFeatured(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, ids(Featured(sampleEvents(), FeaturedCount)))
	assert.Empty(t, Featured(nil, FeaturedCount))
}

func TestParse(t *testing.T) {
	assert.Equal(t, 0, ParseID("all"))
	assert.Equal(t, 0, ParseID(""))
	assert.Equal(t, 0, ParseID("abc"))
	assert.Equal(t, 7, ParseID("7"))
	assert.Equal(t, "", ParseStatus("all"))
	assert.Equal(t, "draft", ParseStatus(" Draft "))
}

func TestOptions(t *testing.T) {
	opts := CategoryOptions([]models.Category{{ID: 4, Name: "Workshop"}})
	assert.Equal(t, []Option{{Key: "all", Label: "All Events"}, {Key: "4", Label: "Workshop"}}, opts)

	uopts := UniversityOptions(nil)
	assert.Equal(t, []Option{{Key: "all", Label: "All Universities"}}, uopts)
}

func TestRegisterLabel(t *testing.T) {
	assert.Equal(t, "Register Now", RegisterLabel(models.Event{}))
	assert.Equal(t, "Join Waitlist", RegisterLabel(models.Event{IsFull: true}))
	assert.Equal(t, "Registered", RegisterLabel(models.Event{IsFull: true, UserRegistrationStatus: ptr("registered")}))
	assert.Equal(t, "On Waitlist", RegisterLabel(models.Event{UserRegistrationStatus: ptr("waitlisted")}))

	assert.False(t, RegisterDisabled(models.Event{IsFull: true}, false))
	assert.True(t, RegisterDisabled(models.Event{}, true))
	assert.True(t, RegisterDisabled(models.Event{UserRegistrationStatus: ptr("waitlisted")}, false))
}

func TestOverview(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	regs := []models.Registration{
		{Status: models.RegistrationRegistered, Event: &models.Event{DateTime: now.Add(24 * time.Hour)}},
		{Status: models.RegistrationRegistered, Event: &models.Event{DateTime: now.Add(-24 * time.Hour)}},
		{Status: models.RegistrationRegistered},
		{Status: models.RegistrationAttended},
		{Status: models.RegistrationAttended},
		{Status: models.RegistrationWaitlisted, Event: &models.Event{DateTime: now.Add(time.Hour)}},
	}

	assert.Equal(t, models.OverviewStats{
		UpcomingEvents: 1,
		EventsAttended: 2,
		AttendanceRate: "33%",
		HoursEngaged:   6,
	}, Overview(regs, now))

	assert.Equal(t, models.OverviewStats{AttendanceRate: "0%"}, Overview(nil, now))
}

func TestRegistrations(t *testing.T) {
	regs := []models.Registration{
		{ID: 1, Status: models.RegistrationRegistered, Event: &models.Event{Title: "Go Meetup", CategoryName: "Technology"}},
		{ID: 2, Status: models.RegistrationCancelled, EventTitle: "Old Talk"},
		{ID: 3, Status: models.RegistrationAttended, EventTitle: "Hackathon"},
	}

	active := Active(regs)
	require.Len(t, active, 2)

	assert.Len(t, Registrations(active, "tech", ""), 1)
	assert.Len(t, Registrations(active, "", models.RegistrationAttended), 1)
	assert.Empty(t, Registrations(active, "old", ""))

	// rows without a nested event search the placeholder texts
	general := Registrations(active, "general", "")
	require.Len(t, general, 1)
	assert.Equal(t, 3, general[0].ID)
	assert.Len(t, Registrations(active, "no description", ""), 1)
}

func TestRegistrants(t *testing.T) {
	regs := []models.Registration{
		{ID: 1, Status: "registered", User: &models.User{Username: "ali", FirstName: "Ali", LastName: "Khan", Email: "ali@fast.edu"}},
		{ID: 2, Status: "waitlisted", User: &models.User{Username: "sara", Email: "sara@lums.edu"}},
	}
	assert.Len(t, Registrants(regs, ""), 2)
	assert.Len(t, Registrants(regs, "khan"), 1)
	assert.Len(t, Registrants(regs, "waitlisted"), 1)
	assert.Len(t, Registrants(regs, "lums.edu"), 1)
}

func TestUsers(t *testing.T) {
	users := []models.User{
		{Username: "ali", Email: "ali@fast.edu", UserType: models.RoleOrganizer},
		{Username: "sara", Email: "sara@lums.edu", Profile: &models.Profile{UserType: models.RoleAdmin}},
		{Username: "omar", FirstName: "Omar", LastName: "Farooq"},
	}
	assert.Len(t, Users(users, "", ""), 3)
	assert.Len(t, Users(users, "omar farooq", ""), 1)
	assert.Len(t, Users(users, "", models.RoleAdmin), 1)
	assert.Len(t, Users(users, "", models.RoleStudent), 1)
}

func TestStats(t *testing.T) {
	assert.Equal(t, EventStats{Total: 6, Published: 4, Draft: 1, Cancelled: 1}, Stats(sampleEvents()))
	assert.Equal(t, EventStats{}, Stats(nil))
}

func TestPaginate(t *testing.T) {
	items := make([]int, 14)
	for i := range items {
		items[i] = i + 1
	}

	p := Paginate(items, 1, ItemsPerPage)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 14, p.Total)

	p = Paginate(items, 3, ItemsPerPage)
	assert.Equal(t, []int{13, 14}, p.Items)

	p = Paginate(items, 99, ItemsPerPage)
	assert.Equal(t, 3, p.Page)

	p = Paginate(items, -1, ItemsPerPage)
	assert.Equal(t, 1, p.Page)

	empty := Paginate([]int{}, 2, ItemsPerPage)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 1, empty.Page)
	assert.Empty(t, empty.Items)
}
