package types

import (
	"net/netip"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Stored keys accepted by Comment.Set and returned by Comment.Get.
const (
	KeyID            = "id"
	KeyParentID      = "parent_id"
	KeyPageID        = "pages_id"
	KeyFieldID       = "fields_id"
	KeyText          = "text"
	KeyTextFormatted = "text_formatted"
	KeySort          = "sort"
	KeyStatus        = "status"
	KeyFlags         = "flags"
	KeyCreated       = "created"
	KeyEmail         = "email"
	KeyCite          = "cite"
	KeyWebsite       = "website"
	KeyIP            = "ip"
	KeyUserAgent     = "user_agent"
	KeyCreatedUserID = "created_users_id"
	KeyCode          = "code"
	KeySubcode       = "subcode"
	KeyUpvotes       = "upvotes"
	KeyDownvotes     = "downvotes"
	KeyStars         = "stars"
)

// Derived keys, readable through Comment.Get only.
const (
	KeyPrevStatus  = "prev_status"
	KeyPage        = "page"
	KeyField       = "field"
	KeyParent      = "parent"
	KeyParents     = "parents"
	KeyChildren    = "children"
	KeyURL         = "url"
	KeyHTTPURL     = "http_url"
	KeyEditURL     = "edit_url"
	KeyDepth       = "depth"
	KeyLoaded      = "loaded"
	KeyGravatar    = "gravatar"
	KeyUser        = "user"
	KeyCreatedUser = "created_user"
)

const (
	maxCiteBytes      = 128
	maxUserAgentBytes = 255
	maxStars          = 5
)

// parentCache memoizes Parent. It is reset whenever parent_id changes.
type parentCache struct {
	comment *Comment
	ok      bool
}

// Comment is one message in a threaded discussion scoped to a page+field.
// Every write goes through a sanitizing setter; Set dispatches keys to the
// same setters. The zero value is an unbound comment with no
// collaborators; NewComment applies the defaults. A Comment is not safe
// for concurrent use.
type Comment struct {
	svc *Services

	id            int
	parentID      int
	text          string
	textFormatted *string
	sort          int
	status        Status
	prevStatus    *Status
	flags         Flags
	created       int64
	email         string
	cite          string
	website       string
	ip            string
	userAgent     string
	createdUserID int
	code          string
	subcode       string
	upvotes       int
	downvotes     int
	stars         int
	extras        map[string]any

	pageID   int
	fieldID  int
	siblings *CommentArray
	parent   parentCache
	loaded   bool
	quiet    bool
}

// NewComment returns an unsaved pending comment created now and authored
// by the configured guest user. svc may be nil.
func NewComment(svc *Services) *Comment {
	if svc == nil {
		svc = &Services{}
	}
	return &Comment{
		svc:           svc,
		status:        StatusPending,
		created:       time.Now().Unix(),
		createdUserID: svc.Config.GuestUserID,
	}
}

// setters is the accessor table used by Set. Values are coerced to the
// field's type before the typed setter applies its rules.
var setters = map[string]func(c *Comment, v any){
	KeyID:            func(c *Comment, v any) { c.SetID(toInt(v)) },
	KeyParentID:      func(c *Comment, v any) { c.SetParentID(toInt(v)) },
	KeyPageID:        func(c *Comment, v any) { c.SetPageID(toInt(v)) },
	KeyFieldID:       func(c *Comment, v any) { c.SetFieldID(toInt(v)) },
	KeyText:          func(c *Comment, v any) { c.SetText(cast.ToString(v)) },
	KeyTextFormatted: func(c *Comment, v any) { c.SetTextFormatted(cast.ToString(v)) },
	KeySort:          func(c *Comment, v any) { c.SetSort(toInt(v)) },
	KeyStatus:        func(c *Comment, v any) { c.SetStatus(Status(toInt(v))) },
	KeyFlags:         func(c *Comment, v any) { c.SetFlags(Flags(toInt(v))) },
	KeyCreated:       func(c *Comment, v any) { c.SetCreated(toInt64(v)) },
	KeyEmail:         func(c *Comment, v any) { c.SetEmail(cast.ToString(v)) },
	KeyCite:          func(c *Comment, v any) { c.SetCite(cast.ToString(v)) },
	KeyWebsite:       func(c *Comment, v any) { c.SetWebsite(cast.ToString(v)) },
	KeyIP:            func(c *Comment, v any) { c.SetIP(cast.ToString(v)) },
	KeyUserAgent:     func(c *Comment, v any) { c.SetUserAgent(cast.ToString(v)) },
	KeyCreatedUserID: func(c *Comment, v any) { c.SetCreatedUserID(toInt(v)) },
	KeyCode:          func(c *Comment, v any) { c.SetCode(cast.ToString(v)) },
	KeySubcode:       func(c *Comment, v any) { c.SetSubcode(cast.ToString(v)) },
	KeyUpvotes:       func(c *Comment, v any) { c.SetUpvotes(toInt(v)) },
	KeyDownvotes:     func(c *Comment, v any) { c.SetDownvotes(toInt(v)) },
	KeyStars:         func(c *Comment, v any) { c.SetStars(toInt(v)) },
}

// Set assigns value to key through the key's sanitizing setter. Unknown
// keys are stored unchanged and readable through Get. Set never rejects a
// value; invalid input is normalized.
func (c *Comment) Set(key string, value any) *Comment {
	if set, ok := setters[key]; ok {
		set(c, value)
		return c
	}
	if c.extras == nil {
		c.extras = make(map[string]any)
	}
	c.extras[key] = value
	return c
}

// toInt coerces v to int. Non-numeric input yields 0.
func toInt(v any) int {
	switch n := v.(type) {
	case Status:
		return int(n)
	case Flags:
		return int(n)
	}
	return cast.ToInt(v)
}

func toInt64(v any) int64 {
	if t, ok := v.(time.Time); ok {
		return t.Unix()
	}
	return cast.ToInt64(v)
}

func (c *Comment) SetID(id int) *Comment {
	c.id = id
	return c
}

// SetParentID sets parent_id and drops the cached parent when the value
// changes.
func (c *Comment) SetParentID(id int) *Comment {
	if id != c.parentID {
		c.parent = parentCache{}
	}
	c.parentID = id
	return c
}

// SetPageID binds the comment to a page by id.
func (c *Comment) SetPageID(id int) *Comment {
	c.pageID = id
	return c
}

// SetFieldID binds the comment to a comments field by id.
func (c *Comment) SetFieldID(id int) *Comment {
	c.fieldID = id
	return c
}

// SetPage binds the comment to p. A nil page unbinds it.
func (c *Comment) SetPage(p Page) *Comment {
	if p == nil {
		return c.SetPageID(0)
	}
	return c.SetPageID(p.ID())
}

// SetField binds the comment to f. A nil field unbinds it.
func (c *Comment) SetField(f Field) *Comment {
	if f == nil {
		return c.SetFieldID(0)
	}
	return c.SetFieldID(f.ID())
}

// SetText cleans s with CleanCommentString and clears any formatted-text
// override.
func (c *Comment) SetText(s string) *Comment {
	c.text = CleanCommentString(s)
	c.textFormatted = nil
	return c
}

// SetTextFormatted stores s as the formatted text returned verbatim by
// FormattedText until the next SetText.
func (c *Comment) SetTextFormatted(s string) *Comment {
	c.textFormatted = &s
	return c
}

func (c *Comment) SetSort(n int) *Comment {
	c.sort = n
	return c
}

// SetStatus sets the status. When the comment is loaded and the value
// changes, the old status is kept as the previous status.
func (c *Comment) SetStatus(s Status) *Comment {
	if c.loaded && s != c.status {
		prev := c.status
		c.prevStatus = &prev
	}
	c.status = s
	return c
}

func (c *Comment) SetFlags(f Flags) *Comment {
	c.flags = f
	return c
}

// SetCreated sets the creation time in unix seconds.
func (c *Comment) SetCreated(unix int64) *Comment {
	c.created = unix
	return c
}

// SetEmail stores the address as normalized by the Sanitizer.
func (c *Comment) SetEmail(s string) *Comment {
	c.email = c.services().sanitizer().Email(s)
	return c
}

// SetCite stores the author name with markup stripped, truncated to 128
// bytes, and CR/LF/TAB turned into spaces.
func (c *Comment) SetCite(s string) *Comment {
	c.cite = cleanLine(s, maxCiteBytes)
	return c
}

// SetWebsite stores an absolute URL without query string, or "".
func (c *Comment) SetWebsite(s string) *Comment {
	c.website = c.services().sanitizer().URL(s, URLOptions{AllowRelative: false, AllowQuerystring: false})
	return c
}

// SetIP stores s when it is an IPv4 or IPv6 literal and "" otherwise.
func (c *Comment) SetIP(s string) *Comment {
	addr, err := netip.ParseAddr(s)
	if err != nil || addr.Zone() != "" {
		c.ip = ""
		return c
	}
	c.ip = s
	return c
}

// SetUserAgent stores the agent with markup stripped, truncated to 255
// bytes, and CR/LF/TAB turned into spaces.
func (c *Comment) SetUserAgent(s string) *Comment {
	c.userAgent = cleanLine(s, maxUserAgentBytes)
	return c
}

func (c *Comment) SetCreatedUserID(id int) *Comment {
	c.createdUserID = id
	return c
}

// SetCode sets the approval code.
func (c *Comment) SetCode(s string) *Comment {
	c.code = s
	return c
}

// SetSubcode sets the subscriber code.
func (c *Comment) SetSubcode(s string) *Comment {
	c.subcode = s
	return c
}

func (c *Comment) SetUpvotes(n int) *Comment {
	c.upvotes = n
	return c
}

func (c *Comment) SetDownvotes(n int) *Comment {
	c.downvotes = n
	return c
}

// SetStars clamps n into [0,5].
func (c *Comment) SetStars(n int) *Comment {
	c.stars = max(0, min(maxStars, n))
	return c
}

// SetIsLoaded marks the comment as fully populated from storage. Status
// changes are tracked only while loaded.
func (c *Comment) SetIsLoaded(loaded bool) {
	c.loaded = loaded
}

// SetQuiet sets quiet mode. Quiet comments do not trigger notifications.
func (c *Comment) SetQuiet(quiet bool) {
	c.quiet = quiet
}

func (c *Comment) ID() int             { return c.id }
func (c *Comment) ParentID() int       { return c.parentID }
func (c *Comment) PageID() int         { return c.pageID }
func (c *Comment) FieldID() int        { return c.fieldID }
func (c *Comment) Text() string        { return c.text }
func (c *Comment) Sort() int           { return c.sort }
func (c *Comment) Status() Status      { return c.status }
func (c *Comment) Flags() Flags        { return c.flags }
func (c *Comment) Created() int64      { return c.created }
func (c *Comment) Email() string       { return c.email }
func (c *Comment) Cite() string        { return c.cite }
func (c *Comment) Website() string     { return c.website }
func (c *Comment) IP() string          { return c.ip }
func (c *Comment) UserAgent() string   { return c.userAgent }
func (c *Comment) CreatedUserID() int  { return c.createdUserID }
func (c *Comment) Code() string        { return c.code }
func (c *Comment) Subcode() string     { return c.subcode }
func (c *Comment) Upvotes() int        { return c.upvotes }
func (c *Comment) Downvotes() int      { return c.downvotes }
func (c *Comment) Stars() int          { return c.stars }
func (c *Comment) IsLoaded() bool      { return c.loaded }
func (c *Comment) Quiet() bool         { return c.quiet }
func (c *Comment) Services() *Services { return c.svc }

// noServices backs comments built without NewComment.
var noServices = &Services{}

// services returns the bound collaborators, or an empty set for a zero
// Comment.
func (c *Comment) services() *Services {
	if c.svc == nil {
		return noServices
	}
	return c.svc
}

// PrevStatus returns the status held before the last change made while
// loaded. The boolean is false when no change has been tracked.
func (c *Comment) PrevStatus() (Status, bool) {
	if c.prevStatus == nil {
		return StatusPending, false
	}
	return *c.prevStatus, true
}

// IsApproved reports whether the comment is approved or featured. A
// comment pending delete is not approved.
func (c *Comment) IsApproved() bool {
	return c.status >= StatusApproved && c.status != StatusDelete
}

// String returns the comment id.
func (c *Comment) String() string {
	return strconv.Itoa(c.id)
}

// Page resolves the bound page, or nil when unbound or unknown.
func (c *Comment) Page() Page {
	if c.pageID == 0 || c.services().Pages == nil {
		return nil
	}
	p, ok := c.services().Pages.Page(c.pageID)
	if !ok {
		return nil
	}
	return p
}

// Field resolves the bound field, or nil when unbound or unknown.
func (c *Comment) Field() Field {
	if c.fieldID == 0 || c.services().Fields == nil {
		return nil
	}
	f, ok := c.services().Fields.Field(c.fieldID)
	if !ok {
		return nil
	}
	return f
}

// User resolves the author. A zero created_users_id resolves the guest
// user. Returns nil without error when no UserLookup is configured.
func (c *Comment) User() (User, error) {
	if c.services().Users == nil {
		return nil, nil
	}
	id := c.createdUserID
	if id == 0 {
		id = c.services().Config.GuestUserID
	}
	return c.services().Users.User(id)
}

// URL returns the page URL, or the configured root URL when no page is
// bound, with a #Comment<id> anchor.
func (c *Comment) URL() string {
	return c.url(false)
}

// HTTPURL is URL with scheme and host.
func (c *Comment) HTTPURL() string {
	return c.url(true)
}

func (c *Comment) url(http bool) string {
	var base string
	if page := c.Page(); page != nil && page.ID() != 0 {
		if http {
			base = page.HTTPURL()
		} else {
			base = page.URL()
		}
	} else if http {
		base = c.services().Config.HTTPRoot
	} else {
		base = c.services().Config.RootURL
	}
	return base + "#Comment" + strconv.Itoa(c.id)
}

// EditURL returns the admin edit URL, or "" when page or field is unbound.
func (c *Comment) EditURL() string {
	page := c.Page()
	if page == nil || page.ID() == 0 {
		return ""
	}
	field := c.Field()
	if field == nil {
		return ""
	}
	return page.EditURL() + "?field=" + field.Name() + "#CommentsAdminItem" + strconv.Itoa(c.id)
}
