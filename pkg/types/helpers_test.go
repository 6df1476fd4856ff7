package types

import (
	"fmt"
	"html"
	"strings"
)

type testPage struct {
	id   int
	path string
}

func (p testPage) ID() int         { return p.id }
func (p testPage) URL() string     { return p.path }
func (p testPage) HTTPURL() string { return "https://example.com" + p.path }
func (p testPage) EditURL() string { return fmt.Sprintf("/admin/page/edit/%d", p.id) }

type testField struct {
	id         int
	name       string
	counter    Counter
	formatters []string
}

func (f testField) ID() int                  { return f.id }
func (f testField) Name() string             { return f.name }
func (f testField) Counter() Counter         { return f.counter }
func (f testField) TextFormatters() []string { return f.formatters }

type testPages map[int]Page

func (m testPages) Page(id int) (Page, bool) {
	p, ok := m[id]
	return p, ok
}

type testFields map[int]Field

func (m testFields) Field(id int) (Field, bool) {
	f, ok := m[id]
	return f, ok
}

type testUser struct {
	id   int
	name string
}

func (u testUser) ID() int       { return u.id }
func (u testUser) Name() string  { return u.name }
func (u testUser) Email() string { return "" }

type testUsers map[int]User

func (m testUsers) User(id int) (User, error) {
	u, ok := m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

// testSanitizer lowercases emails containing "@", drops everything else,
// and accepts only http(s) URLs without a query string.
type testSanitizer struct{}

func (testSanitizer) Email(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "@") {
		return ""
	}
	return strings.ToLower(s)
}

func (testSanitizer) URL(s string, opts URLOptions) string {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return ""
	}
	if !opts.AllowQuerystring && strings.Contains(s, "?") {
		return ""
	}
	return s
}

func (testSanitizer) Entities(s string) string { return html.EscapeString(s) }

type recordingCounter struct {
	got CountOptions
	n   int
}

func (r *recordingCounter) CountComments(_ Page, _ Field, opts CountOptions) (int, error) {
	r.got = opts
	return r.n, nil
}

type upperFormatter struct{}

func (upperFormatter) Format(_ Page, _ Field, v string) string { return strings.ToUpper(v) }

func newTestServices() *Services {
	return &Services{
		Config: Config{
			Backend:     BackendSQLite,
			GuestUserID: 40,
			RootURL:     "/",
			HTTPRoot:    "https://example.com/",
		},
		Pages:     testPages{7: testPage{id: 7, path: "/blog/post/"}},
		Fields:    testFields{3: testField{id: 3, name: "comments"}},
		Users:     testUsers{40: testUser{id: 40, name: "guest"}, 12: testUser{id: 12, name: "ada"}},
		Sanitizer: testSanitizer{},
	}
}

// newThread builds a collection on page 7, field 3 from id/parent pairs.
func newThread(svc *Services, pairs ...[2]int) *CommentArray {
	a := NewCommentArray(7, 3)
	for _, p := range pairs {
		a.Add(NewComment(svc).SetID(p[0]).SetParentID(p[1]))
	}
	return a
}

func mustGet(a *CommentArray, id int) *Comment {
	c, ok := a.Get(id)
	if !ok {
		panic(fmt.Sprintf("comment %d not in collection", id))
	}
	return c
}
