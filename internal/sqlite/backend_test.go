package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

func testConfig(t *testing.T) types.Config {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.HTTPRoot = "https://example.com/"
	return cfg
}

// setupBackend attaches a backend to a fresh data dir and detaches it when
// the test ends.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	return attachBackend(t, testConfig(t))
}

func attachBackend(t *testing.T, cfg types.Config) *Backend {
	t.Helper()
	b := NewBackend(zerolog.Nop())
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackendAttach(t *testing.T) {
	cfg := testConfig(t)
	b := NewBackend(zerolog.Nop())

	require.NoError(t, b.Attach(cfg))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(cfg.DataDir, DatabaseFile))
	assert.NoError(t, err, "database file must be created")

	assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)

	svc := b.Services()
	require.NotNil(t, svc)
	assert.Equal(t, cfg.GuestUserID, svc.Config.GuestUserID)
	assert.NotNil(t, svc.Sanitizer)
	assert.Contains(t, svc.Formatters, "markdown")
}

func TestBackendAttachCreatesDataDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(cfg.DataDir, "nested", "data")
	attachBackend(t, cfg)

	_, err := os.Stat(filepath.Join(cfg.DataDir, DatabaseFile))
	assert.NoError(t, err)
}

func TestBackendAttachInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.Config)
		wantErr error
	}{
		{"empty backend", func(c *types.Config) { c.Backend = "" }, types.ErrBackendEmpty},
		{"unknown backend", func(c *types.Config) { c.Backend = "dolt" }, types.ErrBackendUnknown},
		{"negative cache", func(c *types.Config) { c.UserCacheSize = -1 }, types.ErrCacheSizeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			b := NewBackend(zerolog.Nop())
			assert.ErrorIs(t, b.Attach(cfg), tt.wantErr)
			assert.Nil(t, b.Services())
		})
	}
}

func TestBackendDetach(t *testing.T) {
	b := NewBackend(zerolog.Nop())
	require.NoError(t, b.Attach(testConfig(t)))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "Detach is idempotent")

	assert.Nil(t, b.Services())
	_, err := b.SavePage("/blog/")
	assert.ErrorIs(t, err, types.ErrNotAttached)
	_, err = b.User(40)
	assert.ErrorIs(t, err, types.ErrNotAttached)
	_, err = b.LoadComments(1, 1)
	assert.ErrorIs(t, err, types.ErrNotAttached)
	assert.Nil(t, b.Comments(1, 1))

	_, ok := b.Page(1)
	assert.False(t, ok)
}

func TestBackendReattachKeepsData(t *testing.T) {
	cfg := testConfig(t)
	b := NewBackend(zerolog.Nop())
	require.NoError(t, b.Attach(cfg))
	pageID, err := b.SavePage("/keep/")
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(cfg))
	defer b.Detach()
	p, ok := b.Page(pageID)
	require.True(t, ok)
	assert.Equal(t, "/keep/", p.URL())
}

func TestSeedGuestUser(t *testing.T) {
	t.Run("seeded on attach", func(t *testing.T) {
		b := setupBackend(t)
		u, err := b.User(types.DefaultGuestUserID)
		require.NoError(t, err)
		assert.Equal(t, GuestUserName, u.Name())
	})

	t.Run("idempotent across attaches", func(t *testing.T) {
		cfg := testConfig(t)
		b := NewBackend(zerolog.Nop())
		require.NoError(t, b.Attach(cfg))
		require.NoError(t, b.Detach())
		require.NoError(t, b.Attach(cfg))
		defer b.Detach()

		var n int
		require.NoError(t, b.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("name taken by another id", func(t *testing.T) {
		cfg := testConfig(t)
		b := attachBackend(t, cfg)
		require.NoError(t, b.Detach())

		cfg.GuestUserID = 77
		require.NoError(t, b.Attach(cfg))
		u, err := b.User(77)
		require.NoError(t, err)
		assert.Equal(t, "guest-77", u.Name())
	})

	t.Run("zero guest id skips seeding", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GuestUserID = 0
		b := attachBackend(t, cfg)

		var n int
		require.NoError(t, b.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
		assert.Equal(t, 0, n)
	})
}

func TestPages(t *testing.T) {
	b := setupBackend(t)

	id, err := b.SavePage("blog/post")
	require.NoError(t, err)
	again, err := b.SavePage(" /blog/post/ ")
	require.NoError(t, err)
	assert.Equal(t, id, again, "paths are normalized before lookup")

	p, ok := b.Page(id)
	require.True(t, ok)
	assert.Equal(t, id, p.ID())
	assert.Equal(t, "/blog/post/", p.URL())
	assert.Equal(t, "https://example.com/blog/post/", p.HTTPURL())
	assert.Equal(t, "/admin/page/1/edit", p.EditURL())

	root, err := b.SavePage("")
	require.NoError(t, err)
	p, ok = b.Page(root)
	require.True(t, ok)
	assert.Equal(t, "/", p.URL())

	_, ok = b.Page(999)
	assert.False(t, ok)
	_, err = b.GetPage(999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFields(t *testing.T) {
	b := setupBackend(t)

	id, err := b.SaveField("comments", []string{"markdown"})
	require.NoError(t, err)

	f, ok := b.Field(id)
	require.True(t, ok)
	assert.Equal(t, "comments", f.Name())
	assert.Equal(t, []string{"markdown"}, f.TextFormatters())
	assert.Same(t, b, f.Counter())

	again, err := b.SaveField("comments", []string{"entities", "linebreaks"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	byName, err := b.FieldByName("comments")
	require.NoError(t, err)
	assert.Equal(t, []string{"entities", "linebreaks"}, byName.TextFormatters())

	plain, err := b.SaveField("reviews", nil)
	require.NoError(t, err)
	f, ok = b.Field(plain)
	require.True(t, ok)
	assert.Empty(t, f.TextFormatters())

	_, err = b.SaveField("  ", nil)
	assert.ErrorIs(t, err, types.ErrNameEmpty)
	_, err = b.FieldByName("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, ok = b.Field(999)
	assert.False(t, ok)
}

func TestUsers(t *testing.T) {
	b := setupBackend(t)

	id, err := b.SaveUser("ada", "ada@example.com")
	require.NoError(t, err)
	u, err := b.User(id)
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Name())
	assert.Equal(t, "ada@example.com", u.Email())

	again, err := b.SaveUser("ada", "not-an-email")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	u, err = b.User(id)
	require.NoError(t, err)
	assert.Equal(t, "", u.Email(), "cached user must be replaced on save")

	_, err = b.User(999)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.SaveUser("", "x@example.com")
	assert.ErrorIs(t, err, types.ErrNameEmpty)
}

func TestUserCacheBounded(t *testing.T) {
	cfg := testConfig(t)
	cfg.UserCacheSize = 2
	b := attachBackend(t, cfg)

	for _, name := range []string{"a", "b", "c"} {
		id, err := b.SaveUser(name, "")
		require.NoError(t, err)
		_, err = b.User(id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, b.users.Len())
}
