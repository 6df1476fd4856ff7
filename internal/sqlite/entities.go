package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

// page is a stored page. URLs are built from the site config at lookup
// time.
type page struct {
	id       int
	path     string
	rootURL  string
	httpRoot string
}

func (p *page) ID() int         { return p.id }
func (p *page) Path() string    { return p.path }
func (p *page) URL() string     { return joinURL(p.rootURL, p.path) }
func (p *page) HTTPURL() string { return joinURL(p.httpRoot, p.path) }

// EditURL returns the admin URL for the page. It carries no query string
// so a comment can append its own.
func (p *page) EditURL() string {
	return joinURL(p.rootURL, "/admin/page/"+strconv.Itoa(p.id)+"/edit")
}

// field is a stored comments field. Counting is served by the backend.
type field struct {
	id         int
	name       string
	formatters []string
	counter    types.Counter
}

func (f *field) ID() int                  { return f.id }
func (f *field) Name() string             { return f.name }
func (f *field) Counter() types.Counter   { return f.counter }
func (f *field) TextFormatters() []string { return f.formatters }

type user struct {
	id    int
	name  string
	email string
}

func (u *user) ID() int       { return u.id }
func (u *user) Name() string  { return u.name }
func (u *user) Email() string { return u.email }

func joinURL(root, path string) string {
	if root == "" {
		root = "/"
	}
	return strings.TrimSuffix(root, "/") + "/" + strings.TrimPrefix(path, "/")
}

// normalizePath gives a page path a leading and trailing slash.
func normalizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// SavePage stores a page under its normalized path and returns its id. An
// existing page with the same path is returned unchanged.
func (b *Backend) SavePage(path string) (int, error) {
	db, release, err := b.conn()
	if err != nil {
		return 0, err
	}
	defer release()

	path = normalizePath(path)
	if _, err := db.Exec("INSERT OR IGNORE INTO pages (path) VALUES (?)", path); err != nil {
		return 0, fmt.Errorf("saving page %s: %w", path, err)
	}
	var id int
	if err := db.QueryRow("SELECT id FROM pages WHERE path = ?", path).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading page %s: %w", path, err)
	}
	return id, nil
}

// Page implements types.PageLookup.
func (b *Backend) Page(id int) (types.Page, bool) {
	p, err := b.GetPage(id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			b.log.Warn().Err(err).Int("page", id).Msg("page lookup failed")
		}
		return nil, false
	}
	return p, true
}

// GetPage returns the page with the given id or ErrNotFound.
func (b *Backend) GetPage(id int) (types.Page, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	p := &page{id: id, rootURL: b.config.RootURL, httpRoot: b.config.HTTPRoot}
	err = db.QueryRow("SELECT path FROM pages WHERE id = ?", id).Scan(&p.path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting page %d: %w", id, err)
	}
	return p, nil
}

// SaveField stores a comments field with its ordered formatter names and
// returns its id. Saving an existing name replaces its formatters.
func (b *Backend) SaveField(name string, formatters []string) (int, error) {
	db, release, err := b.conn()
	if err != nil {
		return 0, err
	}
	defer release()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("saving field: %w", types.ErrNameEmpty)
	}
	if formatters == nil {
		formatters = []string{}
	}
	data, err := json.Marshal(formatters)
	if err != nil {
		return 0, fmt.Errorf("encoding formatters for field %s: %w", name, err)
	}
	_, err = db.Exec(
		"INSERT INTO fields (name, formatters) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET formatters = excluded.formatters",
		name, string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("saving field %s: %w", name, err)
	}
	var id int
	if err := db.QueryRow("SELECT id FROM fields WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading field %s: %w", name, err)
	}
	return id, nil
}

// Field implements types.FieldLookup.
func (b *Backend) Field(id int) (types.Field, bool) {
	f, err := b.GetField(id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			b.log.Warn().Err(err).Int("field", id).Msg("field lookup failed")
		}
		return nil, false
	}
	return f, true
}

// GetField returns the field with the given id or ErrNotFound.
func (b *Backend) GetField(id int) (types.Field, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	f := &field{id: id, counter: b}
	var formatters string
	err = db.QueryRow("SELECT name, formatters FROM fields WHERE id = ?", id).Scan(&f.name, &formatters)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting field %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(formatters), &f.formatters); err != nil {
		return nil, fmt.Errorf("decoding formatters for field %d: %w", id, err)
	}
	return f, nil
}

// FieldByName returns the field with the given name or ErrNotFound.
func (b *Backend) FieldByName(name string) (types.Field, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	var id int
	err = db.QueryRow("SELECT id FROM fields WHERE name = ?", name).Scan(&id)
	release()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting field %s: %w", name, err)
	}
	return b.GetField(id)
}

// SaveUser stores a user and returns its id. Saving an existing name
// updates the email.
func (b *Backend) SaveUser(name, email string) (int, error) {
	db, release, err := b.conn()
	if err != nil {
		return 0, err
	}
	defer release()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("saving user: %w", types.ErrNameEmpty)
	}
	email = b.svc.Sanitizer.Email(email)
	_, err = db.Exec(
		"INSERT INTO users (name, email) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET email = excluded.email",
		name, email,
	)
	if err != nil {
		return 0, fmt.Errorf("saving user %s: %w", name, err)
	}
	var id int
	if err := db.QueryRow("SELECT id FROM users WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading user %s: %w", name, err)
	}
	b.users.Remove(id)
	return id, nil
}

// User implements types.UserLookup. Results are cached; SaveUser and
// Import invalidate the cache.
func (b *Backend) User(id int) (types.User, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	if u, ok := b.users.Get(id); ok {
		return u, nil
	}

	u := &user{id: id}
	err = db.QueryRow("SELECT name, email FROM users WHERE id = ?", id).Scan(&u.name, &u.email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	b.users.Add(id, u)
	return u, nil
}
