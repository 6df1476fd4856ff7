package types

import "strings"

// getters is the accessor table used by Get. Derived keys compute their
// value on every call.
var getters = map[string]func(c *Comment) (any, error){
	KeyID:            func(c *Comment) (any, error) { return c.id, nil },
	KeyParentID:      func(c *Comment) (any, error) { return c.parentID, nil },
	KeyPageID:        func(c *Comment) (any, error) { return c.pageID, nil },
	KeyFieldID:       func(c *Comment) (any, error) { return c.fieldID, nil },
	KeyText:          func(c *Comment) (any, error) { return c.text, nil },
	KeySort:          func(c *Comment) (any, error) { return c.sort, nil },
	KeyStatus:        func(c *Comment) (any, error) { return c.status, nil },
	KeyFlags:         func(c *Comment) (any, error) { return c.flags, nil },
	KeyCreated:       func(c *Comment) (any, error) { return c.created, nil },
	KeyEmail:         func(c *Comment) (any, error) { return c.email, nil },
	KeyCite:          func(c *Comment) (any, error) { return c.cite, nil },
	KeyWebsite:       func(c *Comment) (any, error) { return c.website, nil },
	KeyIP:            func(c *Comment) (any, error) { return c.ip, nil },
	KeyUserAgent:     func(c *Comment) (any, error) { return c.userAgent, nil },
	KeyCreatedUserID: func(c *Comment) (any, error) { return c.createdUserID, nil },
	KeyCode:          func(c *Comment) (any, error) { return c.code, nil },
	KeySubcode:       func(c *Comment) (any, error) { return c.subcode, nil },
	KeyUpvotes:       func(c *Comment) (any, error) { return c.upvotes, nil },
	KeyDownvotes:     func(c *Comment) (any, error) { return c.downvotes, nil },
	KeyStars:         func(c *Comment) (any, error) { return c.stars, nil },
	KeyLoaded:        func(c *Comment) (any, error) { return c.loaded, nil },
	KeyURL:           func(c *Comment) (any, error) { return c.URL(), nil },
	KeyHTTPURL:       func(c *Comment) (any, error) { return c.HTTPURL(), nil },
	KeyEditURL:       func(c *Comment) (any, error) { return c.EditURL(), nil },
	KeyParents:       func(c *Comment) (any, error) { return c.Parents() },
	KeyChildren:      func(c *Comment) (any, error) { return c.Children(), nil },
	KeyDepth:         func(c *Comment) (any, error) { return c.Depth() },
	KeyUser:          getUser,
	KeyCreatedUser:   getUser,
	KeyGravatar: func(c *Comment) (any, error) {
		return c.Gravatar(DefaultGravatarRating, DefaultGravatarImageset, DefaultGravatarSize), nil
	},
	KeyTextFormatted: func(c *Comment) (any, error) {
		if c.textFormatted == nil {
			return nil, nil
		}
		return *c.textFormatted, nil
	},
	KeyPrevStatus: func(c *Comment) (any, error) {
		if s, ok := c.PrevStatus(); ok {
			return s, nil
		}
		return nil, nil
	},
	KeyPage: func(c *Comment) (any, error) {
		if p := c.Page(); p != nil {
			return p, nil
		}
		return nil, nil
	},
	KeyField: func(c *Comment) (any, error) {
		if f := c.Field(); f != nil {
			return f, nil
		}
		return nil, nil
	},
	KeyParent: func(c *Comment) (any, error) {
		if p := c.Parent(); p != nil {
			return p, nil
		}
		return nil, nil
	},
}

func getUser(c *Comment) (any, error) {
	u, err := c.User()
	if err != nil || u == nil {
		return nil, err
	}
	return u, nil
}

// Get returns the value for key: a stored field, a derived property, or an
// extra stored by Set. Unbound relationships yield nil. Returns
// ErrPropertyNotFound for an unknown key and an ErrParentCycle error when
// a derived tree property hits a cycle.
func (c *Comment) Get(key string) (any, error) {
	if get, ok := getters[key]; ok {
		return get(c)
	}
	if v, ok := c.extras[key]; ok {
		return v, nil
	}
	return nil, ErrPropertyNotFound
}

// GetFormatted is Get with output formatting: text goes through
// FormattedText, and cite, email, user_agent and website are trimmed and
// entity-escaped.
func (c *Comment) GetFormatted(key string) (any, error) {
	switch key {
	case KeyText:
		return c.FormattedText(), nil
	case KeyCite:
		return c.escaped(c.cite), nil
	case KeyEmail:
		return c.escaped(c.email), nil
	case KeyUserAgent:
		return c.escaped(c.userAgent), nil
	case KeyWebsite:
		return c.escaped(c.website), nil
	}
	return c.Get(key)
}

func (c *Comment) escaped(s string) string {
	return c.services().sanitizer().Entities(strings.TrimSpace(s))
}

// FormattedText returns the text for output. A value set through
// SetTextFormatted wins. Otherwise the field's text formatters run in
// order; names missing from Services.Formatters are skipped. When the
// field names no known formatter the text is entity-escaped and newlines
// become paragraph and line breaks.
func (c *Comment) FormattedText() string {
	if c.textFormatted != nil {
		return *c.textFormatted
	}
	if field := c.Field(); field != nil && len(c.services().Formatters) > 0 {
		var chain []TextFormatter
		for _, name := range field.TextFormatters() {
			if f, ok := c.services().Formatters[name]; ok {
				chain = append(chain, f)
			}
		}
		if len(chain) > 0 {
			page := c.Page()
			value := c.text
			for _, f := range chain {
				value = f.Format(page, field, value)
			}
			return value
		}
	}
	value := c.escaped(c.text)
	value = strings.ReplaceAll(value, "\n\n", "</p><p>")
	return strings.ReplaceAll(value, "\n", "<br />")
}
