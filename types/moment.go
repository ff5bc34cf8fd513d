package types

import "time"

// MomentPrefix is the key prefix under which moments are stored
const MomentPrefix = "moment:"

// Moment is the record stored in the key-value store for a single shared photo
type Moment struct {
	ID      int64  `json:"id"`
	Image   string `json:"image"`
	Caption string `json:"caption"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Likes   int    `json:"likes"`
}

// RecordID returns the identifier of the moment
func (m Moment) RecordID() int64 {
	return m.ID
}

// MomentCreate is supplied by the board and converted into a Moment
type MomentCreate struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
	Author  string `json:"author"`
}

// Validate ensures every required field is present
func (c MomentCreate) Validate() error {
	return requireFields(
		[2]string{"image", c.Image},
		[2]string{"caption", c.Caption},
		[2]string{"author", c.Author},
	)
}

// Moment builds the stored record with no likes,
// dated with the UTC day of now
func (c MomentCreate) Moment(id int64, now time.Time) Moment {
	return Moment{
		ID:      id,
		Image:   c.Image,
		Caption: c.Caption,
		Author:  c.Author,
		Date:    now.UTC().Format(DateLayout),
	}
}

// MomentUpdate contains the editable subset of a moment
type MomentUpdate struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
}

// Validate ensures every required field is present
func (u MomentUpdate) Validate() error {
	return requireFields(
		[2]string{"image", u.Image},
		[2]string{"caption", u.Caption},
	)
}

// Apply overwrites the editable fields of the moment
func (u MomentUpdate) Apply(m *Moment) {
	m.Image = u.Image
	m.Caption = u.Caption
}

// MomentUpdateFrom seeds an edit draft from an existing moment
func MomentUpdateFrom(m Moment) MomentUpdate {
	return MomentUpdate{
		Image:   m.Image,
		Caption: m.Caption,
	}
}
