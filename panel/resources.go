package panel

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/types"
)

// eventDateLayouts are tried in order when ordering events by date
var eventDateLayouts = []string{
	types.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04",
	"01/02/2006",
	"January 2, 2006",
}

// Announcements is the panel for announcements, newest first
type Announcements = Panel[types.Announcement, types.AnnouncementCreate, types.AnnouncementUpdate]

// Events is the panel for events, soonest first
type Events struct {
	*Panel[types.Event, types.EventCreate, types.EventUpdate]
}

// Moments is the panel for moments, newest first
type Moments struct {
	*Panel[types.Moment, types.MomentCreate, types.MomentUpdate]
}

// NewAnnouncements creates an announcements panel
func NewAnnouncements(backend Backend[types.Announcement, types.AnnouncementCreate, types.AnnouncementUpdate],
	logger zerolog.Logger, confirm func(id int64) bool) *Announcements {

	return New(backend, Config[types.Announcement, types.AnnouncementCreate, types.AnnouncementUpdate]{
		Less:          NewestFirst[types.Announcement],
		Prepend:       true,
		ValidateDraft: types.AnnouncementCreate.Validate,
		ValidateEdit:  types.AnnouncementUpdate.Validate,
		EditFrom:      types.AnnouncementUpdateFrom,
		Confirm:       confirm,
		Logger:        logger.With().Str("panel", "announcements").Logger(),
	})
}

// NewEvents creates an events panel
func NewEvents(backend Backend[types.Event, types.EventCreate, types.EventUpdate],
	logger zerolog.Logger, confirm func(id int64) bool) *Events {

	return &Events{New(backend, Config[types.Event, types.EventCreate, types.EventUpdate]{
		Less:          SoonestFirst,
		ValidateDraft: types.EventFields.Validate,
		ValidateEdit:  types.EventFields.Validate,
		EditFrom:      types.EventUpdateFrom,
		Confirm:       confirm,
		Logger:        logger.With().Str("panel", "events").Logger(),
	})}
}

// NewMoments creates a moments panel
func NewMoments(backend Backend[types.Moment, types.MomentCreate, types.MomentUpdate],
	logger zerolog.Logger, confirm func(id int64) bool) *Moments {

	return &Moments{New(backend, Config[types.Moment, types.MomentCreate, types.MomentUpdate]{
		Less:          NewestFirst[types.Moment],
		Prepend:       true,
		ValidateDraft: types.MomentCreate.Validate,
		ValidateEdit:  types.MomentUpdate.Validate,
		EditFrom:      types.MomentUpdateFrom,
		Confirm:       confirm,
		Logger:        logger.With().Str("panel", "moments").Logger(),
	})}
}

// RSVP adds one attendee to the event
func (e *Events) RSVP(ctx context.Context, id int64) bool {
	return e.Increment(ctx, id)
}

// Like adds one like to the moment
func (m *Moments) Like(ctx context.Context, id int64) bool {
	return m.Increment(ctx, id)
}

// NewestFirst orders records by descending id
func NewestFirst[T Record](a, b T) bool {
	return a.RecordID() > b.RecordID()
}

// SoonestFirst orders events by ascending date.
// Events whose date cannot be parsed come last
func SoonestFirst(a, b types.Event) bool {
	aDate, aOK := parseEventDate(a.Date)
	bDate, bOK := parseEventDate(b.Date)

	switch {
	case aOK && bOK:
		return aDate.Before(bDate)
	case aOK != bOK:
		return aOK
	default:
		return false
	}
}

func parseEventDate(value string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
