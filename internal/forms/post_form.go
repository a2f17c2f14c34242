// Package forms binds and validates submitted form data before it reaches
// the services. Invalid forms carry per-field messages for re-rendering.
package forms

import (
	"strconv"
	"strings"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/security"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// PostForm is the create/edit form for a post.
type PostForm struct {
	Text  string
	Group string // raw select value; empty means no group

	GroupID *int              // set by Validate
	Errors  map[string]string // field name -> message
}

// NewPostForm wraps submitted values.
func NewPostForm(text, group string) *PostForm {
	return &PostForm{Text: text, Group: group, Errors: map[string]string{}}
}

// PostFormFrom pre-fills the form with an existing post for editing.
func PostFormFrom(post *models.Post) *PostForm {
	f := NewPostForm(post.Text, "")
	if post.GroupID != nil {
		f.Group = strconv.Itoa(*post.GroupID)
		id := *post.GroupID
		f.GroupID = &id
	}
	return f
}

// Validate checks the text and resolves the group against choices.
// It reports whether the form is valid.
func (f *PostForm) Validate(choices []models.Group, v *security.ValidationService) bool {
	f.Errors = map[string]string{}

	f.Text = v.SanitizeString(f.Text)
	if f.Text == "" {
		f.Errors["text"] = MsgRequired
	} else if err := v.ValidatePostText(f.Text); err != nil {
		f.Errors["text"] = err.Error()
	}

	f.GroupID = nil
	if raw := strings.TrimSpace(f.Group); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || !hasGroup(choices, id) {
			f.Errors["group"] = MsgInvalidChoice
		} else {
			f.GroupID = &id
		}
	}

	return f.Valid()
}

// Valid reports whether the last Validate found no errors.
func (f *PostForm) Valid() bool {
	return len(f.Errors) == 0
}

// Apply copies the validated text and group onto post.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.GroupID = f.GroupID
}

// IsSelected reports whether groupID is the chosen option, for the select box.
func (f *PostForm) IsSelected(groupID int) bool {
	return f.Group == strconv.Itoa(groupID)
}

func hasGroup(choices []models.Group, id int) bool {
	for _, g := range choices {
		if g.ID == id {
			return true
		}
	}
	return false
}
