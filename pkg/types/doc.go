// Package types defines the Comment entity, the CommentArray sibling
// collection, the collaborator interfaces a Comment resolves its page,
// field, user and siblings through, and the standard errors for the
// Commentary module.
//
// A Comment never queries storage directly. Tree relationships (parent,
// parents, children, depth) are derived on demand by scanning the flat
// sibling collection the comment is bound to, using the parent_id field.
package types
