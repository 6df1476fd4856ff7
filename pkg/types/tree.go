package types

import "fmt"

// SetPageComments binds the comment to the sibling collection its tree
// relationships are derived from.
func (c *Comment) SetPageComments(a *CommentArray) {
	c.siblings = a
}

// PageComments returns the sibling collection. A bound collection scoped
// to a different page or field is dropped; an unbound comment asks the
// CollectionProvider for its page+field collection. Returns nil when none
// is available.
func (c *Comment) PageComments() *CommentArray {
	if a := c.siblings; a != nil {
		if c.pageID != 0 && a.pageID != 0 && a.pageID != c.pageID {
			c.siblings = nil
		} else if c.fieldID != 0 && a.fieldID != 0 && a.fieldID != c.fieldID {
			c.siblings = nil
		}
	}
	if c.siblings == nil && c.pageID != 0 && c.fieldID != 0 && c.services().Collections != nil {
		c.siblings = c.services().Collections.Comments(c.pageID, c.fieldID)
	}
	return c.siblings
}

// newScoped returns an empty collection tagged with the comment's scope,
// falling back to the sibling collection's scope.
func (c *Comment) newScoped() *CommentArray {
	pageID, fieldID := c.pageID, c.fieldID
	if s := c.siblings; s != nil {
		if pageID == 0 {
			pageID = s.pageID
		}
		if fieldID == 0 {
			fieldID = s.fieldID
		}
	}
	return NewCommentArray(pageID, fieldID)
}

// Parent returns the sibling whose id equals parent_id, or nil for a root
// comment or a parent missing from the collection. A found parent is
// cached until parent_id changes.
func (c *Comment) Parent() *Comment {
	if c.parent.ok {
		return c.parent.comment
	}
	if c.parentID == 0 {
		return nil
	}
	siblings := c.PageComments()
	if siblings == nil {
		return nil
	}
	for _, s := range siblings.items {
		if s.id == c.parentID {
			c.parent = parentCache{comment: s, ok: true}
			return s
		}
	}
	return nil
}

// Parents returns the ancestors, nearest first. A chain that revisits a
// comment returns the ancestors collected so far and an error wrapping
// ErrParentCycle.
func (c *Comment) Parents() (*CommentArray, error) {
	parents := c.newScoped()
	if c.parentID == 0 {
		return parents, nil
	}
	visited := map[int]bool{c.id: true}
	for p := c.Parent(); p != nil && p.id != 0; p = p.Parent() {
		if visited[p.id] {
			return parents, fmt.Errorf("%w: comment %d reaches ancestor %d twice", ErrParentCycle, c.id, p.id)
		}
		visited[p.id] = true
		parents.items = append(parents.items, p)
	}
	return parents, nil
}

// Depth returns the number of ancestors.
func (c *Comment) Depth() (int, error) {
	parents, err := c.Parents()
	return parents.Len(), err
}

// Children returns the immediate replies in collection order. The result
// is never nil.
func (c *Comment) Children() *CommentArray {
	children := c.newScoped()
	siblings := c.PageComments()
	if siblings == nil {
		return children
	}
	for _, s := range siblings.items {
		if s.parentID != 0 && s.parentID == c.id {
			children.items = append(children.items, s)
		}
	}
	return children
}

// HasChild reports whether child is a reply to this comment, or with
// recursive set, a reply at any depth. Comments are matched by id.
func (c *Comment) HasChild(child *Comment, recursive bool) (bool, error) {
	if child == nil {
		return false, nil
	}
	return c.HasChildID(child.id, recursive)
}

// HasChildID is HasChild by comment id. A reply chain that loops back on
// itself returns an error wrapping ErrParentCycle.
func (c *Comment) HasChildID(id int, recursive bool) (bool, error) {
	return c.hasChild(id, recursive, map[int]bool{c.id: true})
}

func (c *Comment) hasChild(id int, recursive bool, visited map[int]bool) (bool, error) {
	children := c.Children()
	for _, child := range children.items {
		if child.id == id {
			return true, nil
		}
	}
	if !recursive {
		return false, nil
	}
	for _, child := range children.items {
		// unsaved comments cannot have replies
		if child.id == 0 {
			continue
		}
		if visited[child.id] {
			return false, fmt.Errorf("%w: comment %d is its own descendant", ErrParentCycle, child.id)
		}
		visited[child.id] = true
		has, err := child.hasChild(id, true, visited)
		if err != nil || has {
			return has, err
		}
	}
	return false, nil
}

// NumChildren counts stored replies through the field's Counter, which
// sees comments not loaded into any collection. opts.Parent is always
// replaced by this comment's id. bound is false when no field is bound;
// the count is 0 when the field has no Counter.
func (c *Comment) NumChildren(opts CountOptions) (n int, bound bool, err error) {
	id := c.id
	opts.Parent = &id
	field := c.Field()
	if field == nil {
		return 0, false, nil
	}
	counter := field.Counter()
	if counter == nil {
		return 0, true, nil
	}
	n, err = counter.CountComments(c.Page(), field, opts)
	return n, true, err
}
