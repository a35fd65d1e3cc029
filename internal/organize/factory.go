package organize

import "lazy/internal/report"

// OrganizerFactory is a function that creates an Organizer reporting to r
type OrganizerFactory func(r report.Reporter) Organizer

// DefaultOrganizerFactory creates the real engine
var DefaultOrganizerFactory OrganizerFactory = func(r report.Reporter) Organizer {
	return New(r)
}
