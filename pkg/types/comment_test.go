package types

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommentDefaults(t *testing.T) {
	before := time.Now().Unix()
	c := NewComment(newTestServices())

	assert.Equal(t, 0, c.ID())
	assert.Equal(t, 0, c.ParentID())
	assert.Equal(t, "", c.Text())
	assert.Equal(t, StatusPending, c.Status())
	assert.Equal(t, Flags(0), c.Flags())
	assert.Equal(t, 40, c.CreatedUserID())
	assert.GreaterOrEqual(t, c.Created(), before)
	assert.False(t, c.IsLoaded())
	assert.False(t, c.Quiet())

	_, tracked := c.PrevStatus()
	assert.False(t, tracked, "previous status must be unset after construction")
	v, err := c.Get(KeyPrevStatus)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNewCommentNilServices(t *testing.T) {
	c := NewComment(nil)
	c.Set(KeyEmail, "  a@b.c ").Set(KeyWebsite, " https://x.dev ")

	assert.Equal(t, "a@b.c", c.Email())
	assert.Equal(t, "https://x.dev", c.Website())
	assert.Nil(t, c.Page())
	assert.Nil(t, c.Field())
	u, err := c.User()
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestZeroComment(t *testing.T) {
	var c Comment
	c.SetEmail(" a@b.c ").SetWebsite("https://x.dev").SetID(3).SetPageID(1).SetFieldID(1).SetParentID(2)

	assert.Equal(t, "a@b.c", c.Email())
	assert.Equal(t, "https://x.dev", c.Website())
	assert.Nil(t, c.Page())
	assert.Nil(t, c.Field())
	assert.Nil(t, c.Parent())
	assert.Equal(t, "#Comment3", c.URL())
	assert.Equal(t, "#Comment3", c.HTTPURL())
	assert.Equal(t, "", c.EditURL())
	assert.Equal(t, "", c.FormattedText())
	assert.Contains(t, c.Gravatar("", "", 80), "http://www.gravatar.com/avatar/")

	u, err := c.User()
	assert.NoError(t, err)
	assert.Nil(t, u)

	n, bound, err := c.NumChildren(CountOptions{})
	assert.NoError(t, err)
	assert.False(t, bound)
	assert.Zero(t, n)
}

func TestSetStarsClamps(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{-10, 0},
		{-1, 0},
		{0, 0},
		{1, 1},
		{3, 3},
		{5, 5},
		{6, 5},
		{100, 5},
		{"4", 4},
		{"9", 5},
		{"abc", 0},
		{2.9, 2},
		{true, 1},
		{nil, 0},
	}
	for _, tt := range tests {
		c := NewComment(nil).Set(KeyStars, tt.in)
		got, err := c.Get(KeyStars)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "stars %v", tt.in)
	}
}

func TestSetCoercesIntegerKeys(t *testing.T) {
	c := NewComment(nil)
	c.Set(KeyID, "12").
		Set(KeyParentID, 3.0).
		Set(KeyStatus, "1").
		Set(KeyFlags, FlagNotifyReply|FlagNotifyConfirmed).
		Set(KeyCreated, "1700000000").
		Set(KeyCreatedUserID, int64(9)).
		Set(KeySort, "2").
		Set(KeyUpvotes, "7").
		Set(KeyDownvotes, "oops")

	assert.Equal(t, 12, c.ID())
	assert.Equal(t, 3, c.ParentID())
	assert.Equal(t, StatusApproved, c.Status())
	assert.True(t, c.Flags().Has(FlagNotifyReply))
	assert.True(t, c.Flags().Has(FlagNotifyConfirmed))
	assert.False(t, c.Flags().Has(FlagNotifyAll))
	assert.Equal(t, int64(1700000000), c.Created())
	assert.Equal(t, 9, c.CreatedUserID())
	assert.Equal(t, 2, c.Sort())
	assert.Equal(t, 7, c.Upvotes())
	assert.Equal(t, 0, c.Downvotes())
}

func TestSetSanitizesStringKeys(t *testing.T) {
	c := NewComment(newTestServices())

	c.Set(KeyEmail, "  Ada@Example.COM ")
	assert.Equal(t, "ada@example.com", c.Email())
	c.Set(KeyEmail, "not an email")
	assert.Equal(t, "", c.Email())

	c.Set(KeyWebsite, "https://ada.dev/")
	assert.Equal(t, "https://ada.dev/", c.Website())
	c.Set(KeyWebsite, "https://ada.dev/?ref=spam")
	assert.Equal(t, "", c.Website())
	c.Set(KeyWebsite, "/relative/path")
	assert.Equal(t, "", c.Website())

	c.Set(KeyCite, "<b>Ada</b>\nLovelace\t")
	assert.Equal(t, "Ada Lovelace ", c.Cite())
	c.Set(KeyCite, strings.Repeat("c", 200))
	assert.Len(t, c.Cite(), 128)

	c.Set(KeyUserAgent, "Mozilla/5.0\r\n<script>x</script>")
	assert.Equal(t, "Mozilla/5.0  x", c.UserAgent())
	c.Set(KeyUserAgent, strings.Repeat("u", 300))
	assert.Len(t, c.UserAgent(), 255)

	c.Set(KeyText, "<p>Hi</p>\n\n\n\nthere")
	assert.Equal(t, "Hi\n\nthere", c.Text())
}

func TestSetIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"192.168.0.1", "192.168.0.1"},
		{"::1", "::1"},
		{"2001:db8::68", "2001:db8::68"},
		{"999.1.1.1", ""},
		{"localhost", ""},
		{"fe80::1%eth0", ""},
		{"", ""},
	}
	for _, tt := range tests {
		c := NewComment(nil).Set(KeyIP, tt.in)
		assert.Equal(t, tt.want, c.IP(), "ip %q", tt.in)
	}
}

func TestSetUnknownKeyStoredAsIs(t *testing.T) {
	c := NewComment(nil)
	payload := map[string]int{"a": 1}
	c.Set("custom", payload)

	got, err := c.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPrevStatusTracking(t *testing.T) {
	t.Run("not tracked before load", func(t *testing.T) {
		c := NewComment(nil).Set(KeyStatus, StatusApproved)
		c.Set(KeyStatus, StatusSpam)
		_, ok := c.PrevStatus()
		assert.False(t, ok)
	})

	t.Run("tracked after load", func(t *testing.T) {
		c := NewComment(nil).Set(KeyStatus, 1)
		c.SetIsLoaded(true)
		c.Set(KeyStatus, -2)

		prev, ok := c.PrevStatus()
		require.True(t, ok)
		assert.Equal(t, StatusApproved, prev)
		assert.Equal(t, StatusSpam, c.Status())

		v, err := c.Get(KeyPrevStatus)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, v)
	})

	t.Run("unchanged status does not overwrite", func(t *testing.T) {
		c := NewComment(nil).SetStatus(StatusSpam)
		c.SetIsLoaded(true)
		c.SetStatus(StatusApproved)
		c.SetStatus(StatusApproved)

		prev, ok := c.PrevStatus()
		require.True(t, ok)
		assert.Equal(t, StatusSpam, prev)
	})

	t.Run("each change while loaded records the prior value", func(t *testing.T) {
		c := NewComment(nil)
		c.SetIsLoaded(true)
		c.SetStatus(StatusApproved)
		c.SetStatus(StatusFeatured)

		prev, _ := c.PrevStatus()
		assert.Equal(t, StatusApproved, prev)
	})
}

func TestIsApproved(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusSpam, false},
		{StatusPending, false},
		{StatusApproved, true},
		{StatusFeatured, true},
		{StatusDelete, false},
	}
	for _, tt := range tests {
		c := NewComment(nil).SetStatus(tt.status)
		assert.Equal(t, tt.want, c.IsApproved(), "status %s", tt.status)
	}
}

func TestGetFormattedText(t *testing.T) {
	svc := newTestServices()

	t.Run("default escapes and breaks lines", func(t *testing.T) {
		c := NewComment(svc).Set(KeyText, "a & b\n\nc\nd")
		got, err := c.GetFormatted(KeyText)
		require.NoError(t, err)
		assert.Equal(t, "a &amp; b</p><p>c<br />d", got)
	})

	t.Run("override returned verbatim until text changes", func(t *testing.T) {
		c := NewComment(svc).Set(KeyText, "raw")
		c.Set(KeyTextFormatted, "<em>done</em>")
		assert.Equal(t, "<em>done</em>", c.FormattedText())

		v, err := c.Get(KeyTextFormatted)
		require.NoError(t, err)
		assert.Equal(t, "<em>done</em>", v)

		c.Set(KeyText, "fresh")
		assert.Equal(t, "fresh", c.FormattedText())
		v, err = c.Get(KeyTextFormatted)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("field formatter chain skips unknown names", func(t *testing.T) {
		chained := &Services{
			Config:     svc.Config,
			Pages:      svc.Pages,
			Fields:     testFields{3: testField{id: 3, name: "comments", formatters: []string{"missing", "upper"}}},
			Sanitizer:  svc.Sanitizer,
			Formatters: map[string]TextFormatter{"upper": upperFormatter{}},
		}
		c := NewComment(chained).SetPageID(7).SetFieldID(3).SetText("a & b")
		assert.Equal(t, "A & B", c.FormattedText())
	})

	t.Run("only unknown formatters falls back to default", func(t *testing.T) {
		chained := &Services{
			Fields:     testFields{3: testField{id: 3, name: "comments", formatters: []string{"missing"}}},
			Formatters: map[string]TextFormatter{"upper": upperFormatter{}},
		}
		c := NewComment(chained).SetFieldID(3).SetText("x < y")
		assert.Equal(t, "x &lt; y", c.FormattedText())
	})
}

func TestGetFormattedEscapesLineFields(t *testing.T) {
	c := NewComment(newTestServices())
	c.Set(KeyCite, ` Tom "T" & Co `)

	got, err := c.GetFormatted(KeyCite)
	require.NoError(t, err)
	assert.Equal(t, "Tom &#34;T&#34; &amp; Co", got)

	id, err := c.GetFormatted(KeyID)
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestCommentURLs(t *testing.T) {
	svc := newTestServices()

	bound := NewComment(svc).SetID(5).SetPageID(7).SetFieldID(3)
	assert.Equal(t, "/blog/post/#Comment5", bound.URL())
	assert.Equal(t, "https://example.com/blog/post/#Comment5", bound.HTTPURL())
	assert.Equal(t, "/admin/page/edit/7?field=comments#CommentsAdminItem5", bound.EditURL())

	unbound := NewComment(svc).SetID(5)
	assert.Equal(t, "/#Comment5", unbound.URL())
	assert.Equal(t, "https://example.com/#Comment5", unbound.HTTPURL())
	assert.Equal(t, "", unbound.EditURL())

	noField := NewComment(svc).SetID(5).SetPageID(7)
	assert.Equal(t, "", noField.EditURL())

	v, err := bound.Get(KeyEditURL)
	require.NoError(t, err)
	assert.Equal(t, bound.EditURL(), v)
}

func TestCommentString(t *testing.T) {
	assert.Equal(t, "0", NewComment(nil).String())
	assert.Equal(t, "42", NewComment(nil).SetID(42).String())
}

func TestCommentUser(t *testing.T) {
	svc := newTestServices()

	c := NewComment(svc)
	u, err := c.User()
	require.NoError(t, err)
	assert.Equal(t, "guest", u.Name())

	c.Set(KeyCreatedUserID, 12)
	v, err := c.Get(KeyUser)
	require.NoError(t, err)
	assert.Equal(t, "ada", v.(User).Name())

	c.Set(KeyCreatedUserID, 0)
	v, err = c.Get(KeyCreatedUser)
	require.NoError(t, err)
	assert.Equal(t, 40, v.(User).ID())

	c.Set(KeyCreatedUserID, 99)
	_, err = c.Get(KeyUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentPageAndFieldLookup(t *testing.T) {
	svc := newTestServices()
	c := NewComment(svc)

	v, err := c.Get(KeyPage)
	require.NoError(t, err)
	assert.Nil(t, v)

	c.SetPage(testPage{id: 7})
	c.SetField(testField{id: 3})
	p, err := c.Get(KeyPage)
	require.NoError(t, err)
	assert.Equal(t, 7, p.(Page).ID())
	f, err := c.Get(KeyField)
	require.NoError(t, err)
	assert.Equal(t, "comments", f.(Field).Name())

	c.SetPage(nil)
	assert.Nil(t, c.Page())
	assert.Equal(t, 0, c.PageID())

	c.SetPageID(1234)
	assert.Nil(t, c.Page(), "unknown page resolves to nil")
}

func TestGravatar(t *testing.T) {
	want := "http://www.gravatar.com/avatar/3e3417d7ef77d5932a6734b916515ed5?s=80&d=mm&r=g"
	assert.Equal(t, want, GravatarURL("  Ada@Example.com ", "g", "mm", 80, false))
	assert.Equal(t, want, GravatarURL("ada@example.com", "nc-17", "", 80, false))

	https := GravatarURL("ada@example.com", "pg", "identicon", 120, true)
	assert.Equal(t, "https://www.gravatar.com/avatar/3e3417d7ef77d5932a6734b916515ed5?s=120&d=identicon&r=pg", https)

	c := NewComment(newTestServices()).Set(KeyEmail, "ada@example.com")
	v, err := c.Get(KeyGravatar)
	require.NoError(t, err)
	assert.Equal(t, want, v)
}

func TestQuietAndLoaded(t *testing.T) {
	c := NewComment(nil)
	c.SetQuiet(true)
	c.SetIsLoaded(true)
	assert.True(t, c.Quiet())

	v, err := c.Get(KeyLoaded)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestStatusParseAndString(t *testing.T) {
	s, ok := ParseStatus("approved")
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, s)

	s, ok = ParseStatus("-2")
	assert.True(t, ok)
	assert.Equal(t, StatusSpam, s)

	_, ok = ParseStatus("bogus")
	assert.False(t, ok)

	assert.Equal(t, "featured", StatusFeatured.String())
	assert.Equal(t, "7", Status(7).String())
}
