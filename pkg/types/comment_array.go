package types

// CommentArray is the ordered set of comments for one page+field. It is
// the substrate Comment walks to derive parents and children.
type CommentArray struct {
	pageID  int
	fieldID int
	items   []*Comment
}

// NewCommentArray returns an empty collection scoped to a page and field.
func NewCommentArray(pageID, fieldID int) *CommentArray {
	return &CommentArray{pageID: pageID, fieldID: fieldID}
}

// Add appends c. A comment without a sibling collection is bound to this
// one, and a comment without page or field takes the collection's scope.
func (a *CommentArray) Add(c *Comment) *CommentArray {
	if c == nil {
		return a
	}
	if c.pageID == 0 {
		c.pageID = a.pageID
	}
	if c.fieldID == 0 {
		c.fieldID = a.fieldID
	}
	if c.siblings == nil {
		c.siblings = a
	}
	a.items = append(a.items, c)
	return a
}

// MakeNew returns an empty collection with the same scope.
func (a *CommentArray) MakeNew() *CommentArray {
	return NewCommentArray(a.pageID, a.fieldID)
}

func (a *CommentArray) PageID() int  { return a.pageID }
func (a *CommentArray) FieldID() int { return a.fieldID }

// Len returns the number of comments.
func (a *CommentArray) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// At returns the comment at index i.
func (a *CommentArray) At(i int) *Comment {
	return a.items[i]
}

// All returns the comments in insertion order. The slice is a copy.
func (a *CommentArray) All() []*Comment {
	if a == nil {
		return nil
	}
	out := make([]*Comment, len(a.items))
	copy(out, a.items)
	return out
}

// Each calls fn for every comment in order until fn returns false.
func (a *CommentArray) Each(fn func(c *Comment) bool) {
	if a == nil {
		return
	}
	for _, c := range a.items {
		if !fn(c) {
			return
		}
	}
}

// Get returns the first comment with the given id.
func (a *CommentArray) Get(id int) (*Comment, bool) {
	if a == nil {
		return nil, false
	}
	for _, c := range a.items {
		if c.id == id {
			return c, true
		}
	}
	return nil, false
}

// IDs returns the comment ids in order.
func (a *CommentArray) IDs() []int {
	if a == nil {
		return nil
	}
	ids := make([]int, len(a.items))
	for i, c := range a.items {
		ids[i] = c.id
	}
	return ids
}

// Roots returns the comments with no parent, in order.
func (a *CommentArray) Roots() *CommentArray {
	roots := a.MakeNew()
	for _, c := range a.items {
		if c.parentID == 0 {
			roots.items = append(roots.items, c)
		}
	}
	return roots
}
