package sqlite

// JSONL record structures for Export and Import. Field names match the
// column names so the loader can map records onto tables directly.

type pageJSON struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

type fieldJSON struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Formatters string `json:"formatters"`
}

type userJSON struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type commentJSON struct {
	ID            int    `json:"id"`
	PageID        int    `json:"pages_id"`
	FieldID       int    `json:"fields_id"`
	ParentID      int    `json:"parent_id"`
	Text          string `json:"text"`
	Sort          int    `json:"sort"`
	Status        int    `json:"status"`
	Flags         int    `json:"flags"`
	Created       int64  `json:"created"`
	Email         string `json:"email"`
	Cite          string `json:"cite"`
	Website       string `json:"website"`
	IP            string `json:"ip"`
	UserAgent     string `json:"user_agent"`
	CreatedUserID int    `json:"created_users_id"`
	Code          string `json:"code"`
	Subcode       string `json:"subcode"`
	Upvotes       int    `json:"upvotes"`
	Downvotes     int    `json:"downvotes"`
	Stars         int    `json:"stars"`
}
