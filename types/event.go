package types

// EventPrefix is the key prefix under which events are stored
const EventPrefix = "event:"

// Event is the record stored in the key-value store for a single event.
// Date and Time are kept exactly as the caller supplied them
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Attendees   int    `json:"attendees"`
}

// RecordID returns the identifier of the event
func (e Event) RecordID() int64 {
	return e.ID
}

// EventFields is the set of caller-supplied event fields,
// used both to create an event and to replace its editable fields
type EventFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
}

// EventCreate is supplied by the board and converted into an Event
type EventCreate = EventFields

// EventUpdate contains the editable subset of an event
type EventUpdate = EventFields

// Validate ensures every required field is present.
// Description and location are optional
func (f EventFields) Validate() error {
	return requireFields(
		[2]string{"title", f.Title},
		[2]string{"date", f.Date},
		[2]string{"time", f.Time},
	)
}

// Event builds the stored record with no attendees
func (f EventFields) Event(id int64) Event {
	event := Event{ID: id}
	f.Apply(&event)
	return event
}

// Apply replaces every editable field of the event.
// Omitted optional fields are reset to the empty string
func (f EventFields) Apply(e *Event) {
	e.Title = f.Title
	e.Description = f.Description
	e.Date = f.Date
	e.Time = f.Time
	e.Location = f.Location
}

// EventUpdateFrom seeds an edit draft from an existing event
func EventUpdateFrom(e Event) EventUpdate {
	return EventUpdate{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
	}
}
