package sqlite

// Schema DDL. Statements are idempotent so Attach can run them against an
// existing database.
const (
	createPages = `CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE
);`

	createFields = `CREATE TABLE IF NOT EXISTS fields (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    formatters TEXT NOT NULL DEFAULT '[]'
);`

	createUsers = `CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL DEFAULT ''
);`

	createComments = `CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    pages_id INTEGER NOT NULL,
    fields_id INTEGER NOT NULL,
    parent_id INTEGER NOT NULL DEFAULT 0,
    text TEXT NOT NULL DEFAULT '',
    sort INTEGER NOT NULL DEFAULT 0,
    status INTEGER NOT NULL DEFAULT 0,
    flags INTEGER NOT NULL DEFAULT 0,
    created INTEGER NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    cite TEXT NOT NULL DEFAULT '',
    website TEXT NOT NULL DEFAULT '',
    ip TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    created_users_id INTEGER NOT NULL DEFAULT 0,
    code TEXT NOT NULL DEFAULT '',
    subcode TEXT NOT NULL DEFAULT '',
    upvotes INTEGER NOT NULL DEFAULT 0,
    downvotes INTEGER NOT NULL DEFAULT 0,
    stars INTEGER NOT NULL DEFAULT 0
);`
)

// Index DDL for the collection loader and the counter.
const (
	idxCommentsScope  = `CREATE INDEX IF NOT EXISTS idx_comments_scope ON comments(pages_id, fields_id);`
	idxCommentsParent = `CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_id);`
	idxCommentsStatus = `CREATE INDEX IF NOT EXISTS idx_comments_status ON comments(status);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createPages,
	createFields,
	createUsers,
	createComments,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCommentsScope,
	idxCommentsParent,
	idxCommentsStatus,
}

// commentColumns is the column order shared by SELECT, INSERT and the
// JSONL loader.
var commentColumns = []string{
	"id", "pages_id", "fields_id", "parent_id", "text", "sort", "status",
	"flags", "created", "email", "cite", "website", "ip", "user_agent",
	"created_users_id", "code", "subcode", "upvotes", "downvotes", "stars",
}
