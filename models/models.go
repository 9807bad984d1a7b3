package models

// Note is a stored note. Title and Content are optional: a nil pointer
// means the field is absent and it is left out of the JSON output.
type Note struct {
	ID      string  `json:"_id"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// NoteInput is the request body accepted by create and update.
// Unknown fields are ignored and missing fields stay nil.
type NoteInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
