package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/commentary/internal/sqlite"
	"github.com/mesh-intelligence/commentary/pkg/types"
)

// snippetLen bounds the text shown per comment in tree output.
const snippetLen = 60

func newCommentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comment",
		Aliases: []string{"comments"},
		Short:   "Add, list and moderate comments",
	}
	cmd.AddCommand(newCommentAddCmd(a))
	cmd.AddCommand(newCommentListCmd(a))
	cmd.AddCommand(newCommentShowCmd(a))
	cmd.AddCommand(newCommentStatusCmd(a))
	cmd.AddCommand(newCommentCountCmd(a))
	return cmd
}

// commentView is the JSON shape of a comment.
type commentView struct {
	ID            int    `json:"id"`
	ParentID      int    `json:"parent_id"`
	PageID        int    `json:"pages_id"`
	FieldID       int    `json:"fields_id"`
	Status        string `json:"status"`
	Created       int64  `json:"created"`
	Cite          string `json:"cite"`
	Email         string `json:"email"`
	Website       string `json:"website"`
	User          string `json:"user,omitempty"`
	Stars         int    `json:"stars"`
	Upvotes       int    `json:"upvotes"`
	Downvotes     int    `json:"downvotes"`
	Text          string `json:"text"`
	TextFormatted string `json:"text_formatted"`
	Depth         int    `json:"depth"`
	Parents       []int  `json:"parents"`
	Children      []int  `json:"children"`
	NumChildren   int    `json:"num_children"`
	URL           string `json:"url"`
	HTTPURL       string `json:"http_url"`
	EditURL       string `json:"edit_url"`
	Gravatar      string `json:"gravatar"`
	Error         string `json:"error,omitempty"`
}

// viewComment builds the JSON view of c. A parent cycle is reported in
// the Error field with Depth set to -1.
func viewComment(c *types.Comment) commentView {
	v := commentView{
		ID:            c.ID(),
		ParentID:      c.ParentID(),
		PageID:        c.PageID(),
		FieldID:       c.FieldID(),
		Status:        c.Status().String(),
		Created:       c.Created(),
		Cite:          c.Cite(),
		Email:         c.Email(),
		Website:       c.Website(),
		Stars:         c.Stars(),
		Upvotes:       c.Upvotes(),
		Downvotes:     c.Downvotes(),
		Text:          c.Text(),
		TextFormatted: c.FormattedText(),
		Children:      c.Children().IDs(),
		URL:           c.URL(),
		HTTPURL:       c.HTTPURL(),
		EditURL:       c.EditURL(),
		Gravatar:      c.Gravatar(types.DefaultGravatarRating, types.DefaultGravatarImageset, types.DefaultGravatarSize),
	}
	if u, err := c.User(); err == nil && u != nil {
		v.User = u.Name()
	}
	if n, _, err := c.NumChildren(types.CountOptions{}); err == nil {
		v.NumChildren = n
	}
	parents, err := c.Parents()
	v.Parents = parents.IDs()
	if err != nil {
		v.Depth = -1
		v.Error = err.Error()
	} else {
		v.Depth = len(v.Parents)
	}
	return v
}

// author returns the name shown for c: its cite, else its user's name.
func author(c *types.Comment) string {
	if c.Cite() != "" {
		return c.Cite()
	}
	if u, err := c.User(); err == nil && u != nil {
		return u.Name()
	}
	return "-"
}

// snippet returns the first line of s cut to snippetLen runes.
func snippet(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	r := []rune(s)
	return string(r[:snippetLen-3]) + "..."
}

// renderTree writes the collection as an indented reply tree. Comments
// whose parent is not in the collection are shown at the top level.
// Comments caught in a parent cycle cannot be placed in the tree; they
// are logged and their ids returned.
func renderTree(w io.Writer, a *types.CommentArray, log zerolog.Logger) []int {
	placed := make(map[int]bool, a.Len())

	var walk func(c *types.Comment, depth int)
	walk = func(c *types.Comment, depth int) {
		placed[c.ID()] = true
		fmt.Fprintf(w, "%s#%d %s [%s] %s: %s\n",
			strings.Repeat("  ", depth), c.ID(), formatTime(c.Created()),
			c.Status(), author(c), snippet(c.Text()))
		c.Children().Each(func(child *types.Comment) bool {
			if !placed[child.ID()] {
				walk(child, depth+1)
			}
			return true
		})
	}

	a.Each(func(c *types.Comment) bool {
		if c.Parent() == nil && !placed[c.ID()] {
			walk(c, 0)
		}
		return true
	})

	var cyclic []int
	a.Each(func(c *types.Comment) bool {
		if placed[c.ID()] {
			return true
		}
		cyclic = append(cyclic, c.ID())
		if _, err := c.Depth(); errors.Is(err, types.ErrParentCycle) {
			log.Warn().Int("comment", c.ID()).Int("parent", c.ParentID()).Msg("parent cycle, comment omitted from tree")
		}
		return true
	})
	return cyclic
}

// loadScope resolves the page id and field name flags to a loaded
// collection.
func loadScope(backend *sqlite.Backend, pageID int, fieldName string) (*types.CommentArray, error) {
	if pageID <= 0 {
		return nil, usageErrorf("--page is required")
	}
	if fieldName == "" {
		return nil, usageErrorf("--field is required")
	}
	if _, err := backend.GetPage(pageID); err != nil {
		return nil, err
	}
	field, err := backend.FieldByName(fieldName)
	if err != nil {
		return nil, err
	}
	return backend.LoadComments(pageID, field.ID())
}

func newCommentAddCmd(a *app) *cobra.Command {
	var (
		pageID, parentID, stars, userID     int
		fieldName, text, status, created    string
		email, cite, website, ip, userAgent string
		notifyReplies, notifyAll            bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a comment and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, ok := types.ParseStatus(status)
			if !ok {
				return usageErrorf("unknown status %q", status)
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			siblings, err := loadScope(backend, pageID, fieldName)
			if err != nil {
				return err
			}
			if parentID != 0 {
				if _, ok := siblings.Get(parentID); !ok {
					return usageErrorf("parent %d is not a comment of page %d field %s", parentID, pageID, fieldName)
				}
			}

			c := backend.NewComment().
				SetPageID(pageID).
				SetFieldID(siblings.FieldID()).
				SetParentID(parentID).
				SetText(text).
				SetStatus(st).
				SetEmail(email).
				SetCite(cite).
				SetWebsite(website).
				SetIP(ip).
				SetUserAgent(userAgent)
			if cmd.Flags().Changed("stars") {
				c.SetStars(stars)
			}
			if cmd.Flags().Changed("user") {
				c.SetCreatedUserID(userID)
			}
			if created != "" {
				unix, err := parseTime(created)
				if err != nil {
					return err
				}
				c.SetCreated(unix)
			}
			var flags types.Flags
			if notifyReplies {
				flags |= types.FlagNotifyReply
			}
			if notifyAll {
				flags |= types.FlagNotifyAll
			}
			c.SetFlags(flags)

			if err := backend.SaveComment(c); err != nil {
				return err
			}
			a.log.Info().Int("comment", c.ID()).Int("page", pageID).Int("parent", parentID).Msg("comment added")

			if a.jsonMode {
				saved, err := backend.Comment(c.ID())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), viewComment(saved))
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID())
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&pageID, "page", 0, "page id (required)")
	f.StringVar(&fieldName, "field", "", "comments field name (required)")
	f.IntVar(&parentID, "parent", 0, "id of the comment being replied to")
	f.StringVar(&text, "text", "", "comment text")
	f.StringVar(&status, "status", types.StatusPending.String(), "status name or number")
	f.StringVar(&created, "created", "", "creation time, unix seconds or a date (default now)")
	f.StringVar(&email, "email", "", "author email")
	f.StringVar(&cite, "cite", "", "author display name")
	f.StringVar(&website, "website", "", "author website")
	f.StringVar(&ip, "ip", "", "author IP address")
	f.StringVar(&userAgent, "user-agent", "", "author user agent")
	f.IntVar(&stars, "stars", 0, "star rating, 1 to 5")
	f.IntVar(&userID, "user", 0, "author user id (default guest)")
	f.BoolVar(&notifyReplies, "notify-replies", false, "notify the author of replies")
	f.BoolVar(&notifyAll, "notify-all", false, "notify the author of every comment on the page")
	return cmd
}

func newCommentListCmd(a *app) *cobra.Command {
	var (
		pageID    int
		fieldName string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the comments of a page as a reply tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			comments, err := loadScope(backend, pageID, fieldName)
			if err != nil {
				return err
			}

			if a.jsonMode {
				views := make([]commentView, 0, comments.Len())
				comments.Each(func(c *types.Comment) bool {
					views = append(views, viewComment(c))
					return true
				})
				return printJSON(cmd.OutOrStdout(), views)
			}

			if comments.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No comments.")
				return nil
			}
			renderTree(cmd.OutOrStdout(), comments, a.log)
			return nil
		},
	}
	cmd.Flags().IntVar(&pageID, "page", 0, "page id (required)")
	cmd.Flags().StringVar(&fieldName, "field", "", "comments field name (required)")
	return cmd
}

func newCommentShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a comment with its thread position as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			c, err := backend.Comment(id)
			if err != nil {
				return err
			}
			v := viewComment(c)
			if v.Error != "" {
				a.log.Warn().Int("comment", id).Msg(v.Error)
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func newCommentStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the moderation status of a comment",
		Long:  "Change the moderation status of a comment. Status is one of spam, pending,\napproved, featured, delete, or a number.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, ok := types.ParseStatus(args[1])
			if !ok {
				return usageErrorf("unknown status %q", args[1])
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			c, err := backend.Comment(id)
			if err != nil {
				return err
			}
			c.SetStatus(st)
			prev, changed := c.PrevStatus()
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "comment %d: already %s\n", id, st)
				return nil
			}
			if err := backend.SaveComment(c); err != nil {
				return err
			}
			a.log.Info().Int("comment", id).Str("from", prev.String()).Str("to", st.String()).Msg("status changed")

			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"id": id, "prev_status": prev.String(), "status": st.String(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "comment %d: %s -> %s\n", id, prev, st)
			return nil
		},
	}
}

// countFlags holds the raw filter flags of "comment count".
type countFlags struct {
	status, minStatus, maxStatus string
	since, until                 string
	stars, minStars, maxStars    int
	parent                       int
}

// options converts the flags that were set into CountOptions.
func (f countFlags) options(cmd *cobra.Command) (types.CountOptions, error) {
	var opts types.CountOptions
	changed := cmd.Flags().Changed

	statusFlag := func(name, v string) (*types.Status, error) {
		if !changed(name) {
			return nil, nil
		}
		st, ok := types.ParseStatus(v)
		if !ok {
			return nil, usageErrorf("unknown status %q", v)
		}
		return &st, nil
	}
	timeFlag := func(name, v string) (*int64, error) {
		if !changed(name) {
			return nil, nil
		}
		unix, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		return &unix, nil
	}
	intFlag := func(name string, v int) *int {
		if !changed(name) {
			return nil
		}
		return &v
	}

	var err error
	if opts.Status, err = statusFlag("status", f.status); err != nil {
		return opts, err
	}
	if opts.MinStatus, err = statusFlag("min-status", f.minStatus); err != nil {
		return opts, err
	}
	if opts.MaxStatus, err = statusFlag("max-status", f.maxStatus); err != nil {
		return opts, err
	}
	if opts.MinCreated, err = timeFlag("since", f.since); err != nil {
		return opts, err
	}
	if opts.MaxCreated, err = timeFlag("until", f.until); err != nil {
		return opts, err
	}
	opts.Stars = intFlag("stars", f.stars)
	opts.MinStars = intFlag("min-stars", f.minStars)
	opts.MaxStars = intFlag("max-stars", f.maxStars)
	opts.Parent = intFlag("parent", f.parent)
	return opts, nil
}

func newCommentCountCmd(a *app) *cobra.Command {
	var (
		pageID    int
		fieldName string
		cf        countFlags
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count stored comments of a field",
		Long:  "Count stored comments of a field, on one page or on every page when --page is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fieldName == "" {
				return usageErrorf("--field is required")
			}
			opts, err := cf.options(cmd)
			if err != nil {
				return err
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			field, err := backend.FieldByName(fieldName)
			if err != nil {
				return err
			}
			var page types.Page
			if pageID != 0 {
				if page, err = backend.GetPage(pageID); err != nil {
					return err
				}
			}

			n, err := backend.CountComments(page, field, opts)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int{"count": n})
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&pageID, "page", 0, "page id (default all pages)")
	f.StringVar(&fieldName, "field", "", "comments field name (required)")
	f.StringVar(&cf.status, "status", "", "exact status")
	f.StringVar(&cf.minStatus, "min-status", "", "minimum status")
	f.StringVar(&cf.maxStatus, "max-status", "", "maximum status")
	f.StringVar(&cf.since, "since", "", "created at or after, unix seconds or a date")
	f.StringVar(&cf.until, "until", "", "created at or before, unix seconds or a date")
	f.IntVar(&cf.stars, "stars", 0, "exact star rating")
	f.IntVar(&cf.minStars, "min-stars", 0, "minimum star rating")
	f.IntVar(&cf.maxStars, "max-stars", 0, "maximum star rating")
	f.IntVar(&cf.parent, "parent", 0, "parent comment id, 0 for top-level comments")
	return cmd
}
