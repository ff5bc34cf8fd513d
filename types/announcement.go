package types

import "time"

// AnnouncementPrefix is the key prefix under which announcements are stored
const AnnouncementPrefix = "announcement:"

// DateLayout is the layout of every creation date assigned by the server
const DateLayout = "2006-01-02"

// Announcement is the record stored in the key-value store for a single announcement
type Announcement struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// RecordID returns the identifier of the announcement
func (a Announcement) RecordID() int64 {
	return a.ID
}

// AnnouncementCreate is supplied by the board and converted into
// an Announcement
type AnnouncementCreate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Validate ensures every required field is present
func (c AnnouncementCreate) Validate() error {
	return requireFields(
		[2]string{"title", c.Title},
		[2]string{"content", c.Content},
		[2]string{"author", c.Author},
	)
}

// Announcement builds the stored record, dated with the UTC day of now
func (c AnnouncementCreate) Announcement(id int64, now time.Time) Announcement {
	return Announcement{
		ID:      id,
		Title:   c.Title,
		Content: c.Content,
		Author:  c.Author,
		Date:    now.UTC().Format(DateLayout),
	}
}

// AnnouncementUpdate contains the editable subset of an announcement
type AnnouncementUpdate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate ensures every required field is present
func (u AnnouncementUpdate) Validate() error {
	return requireFields(
		[2]string{"title", u.Title},
		[2]string{"content", u.Content},
	)
}

// Apply overwrites the editable fields of the announcement
func (u AnnouncementUpdate) Apply(a *Announcement) {
	a.Title = u.Title
	a.Content = u.Content
}

// AnnouncementUpdateFrom seeds an edit draft from an existing announcement
func AnnouncementUpdateFrom(a Announcement) AnnouncementUpdate {
	return AnnouncementUpdate{
		Title:   a.Title,
		Content: a.Content,
	}
}
