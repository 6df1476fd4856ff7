package types

import (
	"html"
	"strings"
)

// Page is the content page a comment lives on.
type Page interface {
	ID() int
	URL() string
	HTTPURL() string
	EditURL() string
}

// Field is the comments field of a page template. Counter returns nil
// when the field has no type handler able to count comments.
type Field interface {
	ID() int
	Name() string
	Counter() Counter
	TextFormatters() []string
}

// User is a comment author.
type User interface {
	ID() int
	Name() string
	Email() string
}

// PageLookup resolves a page id. The boolean is false when no page exists.
type PageLookup interface {
	Page(id int) (Page, bool)
}

// FieldLookup resolves a field id. The boolean is false when no field exists.
type FieldLookup interface {
	Field(id int) (Field, bool)
}

// UserLookup resolves a user id.
type UserLookup interface {
	User(id int) (User, error)
}

// CollectionProvider returns the ordered sibling collection for a
// page+field pair. It returns nil when the pair has no comments loaded.
type CollectionProvider interface {
	Comments(pageID, fieldID int) *CommentArray
}

// CountOptions filters a comment count. Nil pointers leave the filter
// unset.
type CountOptions struct {
	Status     *Status
	MinStatus  *Status
	MaxStatus  *Status
	MinCreated *int64
	MaxCreated *int64
	Stars      *int
	MinStars   *int
	MaxStars   *int
	Parent     *int
}

// Counter counts stored comments for a page+field, including comments not
// present in any in-memory collection.
type Counter interface {
	CountComments(page Page, field Field, opts CountOptions) (int, error)
}

// URLOptions controls Sanitizer.URL.
type URLOptions struct {
	AllowRelative    bool
	AllowQuerystring bool
}

// Sanitizer normalizes untrusted input. Implementations return "" for
// values they cannot accept rather than failing.
type Sanitizer interface {
	Email(s string) string
	URL(s string, opts URLOptions) string
	Entities(s string) string
}

// TextFormatter transforms comment text for output.
type TextFormatter interface {
	Format(page Page, field Field, value string) string
}

// Services bundles the collaborators a Comment resolves through. Any
// member may be nil; the comment then treats the relationship as unbound.
type Services struct {
	Config      Config
	Pages       PageLookup
	Fields      FieldLookup
	Users       UserLookup
	Collections CollectionProvider
	Sanitizer   Sanitizer
	Formatters  map[string]TextFormatter
}

// sanitizer returns the configured Sanitizer or a pass-through fallback.
func (s *Services) sanitizer() Sanitizer {
	if s.Sanitizer != nil {
		return s.Sanitizer
	}
	return plainSanitizer{}
}

// plainSanitizer trims values and escapes entities. It does no validation.
type plainSanitizer struct{}

func (plainSanitizer) Email(s string) string             { return strings.TrimSpace(s) }
func (plainSanitizer) URL(s string, _ URLOptions) string { return strings.TrimSpace(s) }
func (plainSanitizer) Entities(s string) string          { return html.EscapeString(s) }
