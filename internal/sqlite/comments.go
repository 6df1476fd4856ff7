package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

// generateCode returns a UUID v7 string for approval and subscriber codes.
func generateCode() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

var selectComments = "SELECT " + strings.Join(commentColumns, ", ") + " FROM comments"

// SaveComment inserts c when its id is zero and updates it otherwise. The
// comment must be bound to a page and a field. Empty code and subcode are
// generated. A saved comment is marked loaded so later status changes are
// tracked.
func (b *Backend) SaveComment(c *types.Comment) error {
	if c.PageID() == 0 || c.FieldID() == 0 {
		return types.ErrInvalidScope
	}

	db, release, err := b.conn()
	if err != nil {
		return err
	}
	defer release()

	if c.Code() == "" {
		c.SetCode(generateCode())
	}
	if c.Subcode() == "" {
		c.SetSubcode(generateCode())
	}

	args := []any{
		c.PageID(), c.FieldID(), c.ParentID(), c.Text(), c.Sort(), int(c.Status()),
		int(c.Flags()), c.Created(), c.Email(), c.Cite(), c.Website(), c.IP(), c.UserAgent(),
		c.CreatedUserID(), c.Code(), c.Subcode(), c.Upvotes(), c.Downvotes(), c.Stars(),
	}
	cols := commentColumns[1:]

	if c.ID() == 0 {
		query := fmt.Sprintf("INSERT INTO comments (%s) VALUES (%s)",
			strings.Join(cols, ", "), placeholders(len(cols)))
		res, err := db.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("inserting comment: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading comment id: %w", err)
		}
		c.SetID(int(id))
	} else {
		sets := make([]string, len(cols))
		for i, col := range cols {
			sets[i] = col + " = ?"
		}
		query := fmt.Sprintf("UPDATE comments SET %s WHERE id = ?", strings.Join(sets, ", "))
		res, err := db.Exec(query, append(args, c.ID())...)
		if err != nil {
			return fmt.Errorf("updating comment %d: %w", c.ID(), err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("updating comment %d: %w", c.ID(), types.ErrNotFound)
		}
	}

	c.SetIsLoaded(true)
	b.log.Debug().Int("comment", c.ID()).Str("status", c.Status().String()).Msg("saved comment")
	return nil
}

// LoadComments returns the sibling collection for a page+field in display
// order. Every comment is loaded and bound to the collection.
func (b *Backend) LoadComments(pageID, fieldID int) (*types.CommentArray, error) {
	svc := b.Services()
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.Query(selectComments+" WHERE pages_id = ? AND fields_id = ? ORDER BY sort, created, id", pageID, fieldID)
	if err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}
	defer rows.Close()

	a := types.NewCommentArray(pageID, fieldID)
	for rows.Next() {
		c, err := scanComment(svc, rows)
		if err != nil {
			return nil, fmt.Errorf("loading comments: %w", err)
		}
		a.Add(c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}

	b.log.Debug().Int("page", pageID).Int("field", fieldID).Int("comments", a.Len()).Msg("loaded comments")
	return a, nil
}

// Comments implements types.CollectionProvider. Errors are logged and
// yield nil.
func (b *Backend) Comments(pageID, fieldID int) *types.CommentArray {
	a, err := b.LoadComments(pageID, fieldID)
	if err != nil {
		b.log.Warn().Err(err).Int("page", pageID).Int("field", fieldID).Msg("collection lookup failed")
		return nil
	}
	return a
}

// Comment loads the comment with the given id together with its sibling
// collection, so tree relationships resolve. Returns ErrNotFound when no
// such comment exists.
func (b *Backend) Comment(id int) (*types.Comment, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	var pageID, fieldID int
	err = db.QueryRow("SELECT pages_id, fields_id FROM comments WHERE id = ?", id).Scan(&pageID, &fieldID)
	release()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment %d: %w", id, err)
	}

	a, err := b.LoadComments(pageID, fieldID)
	if err != nil {
		return nil, err
	}
	c, ok := a.Get(id)
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", id, types.ErrNotFound)
	}
	return c, nil
}

func scanComment(svc *types.Services, rows *sql.Rows) (*types.Comment, error) {
	var (
		id, pageID, fieldID, parentID, sort, status, flags int
		created                                            int64
		text, email, cite, website, ip, userAgent          string
		createdUserID, upvotes, downvotes, stars           int
		code, subcode                                      string
	)
	err := rows.Scan(&id, &pageID, &fieldID, &parentID, &text, &sort, &status,
		&flags, &created, &email, &cite, &website, &ip, &userAgent,
		&createdUserID, &code, &subcode, &upvotes, &downvotes, &stars)
	if err != nil {
		return nil, err
	}

	c := types.NewComment(svc).
		SetID(id).
		SetPageID(pageID).
		SetFieldID(fieldID).
		SetParentID(parentID).
		SetText(text).
		SetSort(sort).
		SetStatus(types.Status(status)).
		SetFlags(types.Flags(flags)).
		SetCreated(created).
		SetEmail(email).
		SetCite(cite).
		SetWebsite(website).
		SetIP(ip).
		SetUserAgent(userAgent).
		SetCreatedUserID(createdUserID).
		SetCode(code).
		SetSubcode(subcode).
		SetUpvotes(upvotes).
		SetDownvotes(downvotes).
		SetStars(stars)
	c.SetIsLoaded(true)
	return c, nil
}

// CountComments implements types.Counter. It counts stored comments for
// the field, restricted to the page when one is given.
func (b *Backend) CountComments(page types.Page, field types.Field, opts types.CountOptions) (int, error) {
	if field == nil {
		return 0, types.ErrInvalidScope
	}
	pageID := 0
	if page != nil {
		pageID = page.ID()
	}

	db, release, err := b.conn()
	if err != nil {
		return 0, err
	}
	defer release()

	where, args := countConditions(pageID, field.ID(), opts)
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM comments WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return n, nil
}

// countConditions builds the WHERE clause for CountComments.
func countConditions(pageID, fieldID int, opts types.CountOptions) (string, []any) {
	conds := []string{"fields_id = ?"}
	args := []any{fieldID}
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if pageID != 0 {
		add("pages_id = ?", pageID)
	}
	if opts.Status != nil {
		add("status = ?", int(*opts.Status))
	}
	if opts.MinStatus != nil {
		add("status >= ?", int(*opts.MinStatus))
	}
	if opts.MaxStatus != nil {
		add("status <= ?", int(*opts.MaxStatus))
	}
	if opts.MinCreated != nil {
		add("created >= ?", *opts.MinCreated)
	}
	if opts.MaxCreated != nil {
		add("created <= ?", *opts.MaxCreated)
	}
	if opts.Stars != nil {
		add("stars = ?", *opts.Stars)
	}
	if opts.MinStars != nil {
		add("stars >= ?", *opts.MinStars)
	}
	if opts.MaxStars != nil {
		add("stars <= ?", *opts.MaxStars)
	}
	if opts.Parent != nil {
		add("parent_id = ?", *opts.Parent)
	}
	return strings.Join(conds, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
