package sqlite

import (
	"database/sql"
	"fmt"
)

// GuestUserName is the name of the seeded guest user.
const GuestUserName = "guest"

// seedGuestUser creates the guest user under guestID if no user holds that
// id yet. Seeding is idempotent and skipped for a zero id.
func seedGuestUser(db *sql.DB, guestID int) error {
	if guestID == 0 {
		return nil
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", guestID).Scan(&count); err != nil {
		return fmt.Errorf("counting guest user: %w", err)
	}
	if count > 0 {
		return nil
	}

	name := GuestUserName
	var taken int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE name = ?", name).Scan(&taken); err != nil {
		return fmt.Errorf("checking guest user name: %w", err)
	}
	if taken > 0 {
		name = fmt.Sprintf("%s-%d", GuestUserName, guestID)
	}

	if _, err := db.Exec("INSERT INTO users (id, name, email) VALUES (?, ?, '')", guestID, name); err != nil {
		return fmt.Errorf("seeding guest user: %w", err)
	}
	return nil
}
