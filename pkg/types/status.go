package types

import "strconv"

// Status is the moderation state of a comment. Any integer may be stored;
// the constants below are the recognized states.
type Status int

// Comment statuses.
const (
	StatusSpam     Status = -2
	StatusPending  Status = 0
	StatusApproved Status = 1
	StatusFeatured Status = 2
	StatusDelete   Status = 999
)

var statusNames = map[Status]string{
	StatusSpam:     "spam",
	StatusPending:  "pending",
	StatusApproved: "approved",
	StatusFeatured: "featured",
	StatusDelete:   "delete",
}

// String returns the status name, or the number for unrecognized values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// ParseStatus accepts a status name or number. Unrecognized names return
// false.
func ParseStatus(v string) (Status, bool) {
	for s, name := range statusNames {
		if name == v {
			return s, true
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return StatusPending, false
	}
	return Status(n), true
}

// Flags is a bitmask of notification preferences.
type Flags int

// Comment flags.
const (
	FlagNotifyReply     Flags = 2 // notify author of replies to this comment
	FlagNotifyAll       Flags = 4 // notify author of all comments on the page
	FlagNotifyConfirmed Flags = 8 // notification request confirmed by double opt-in
)

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}
