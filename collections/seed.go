package collections

import (
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// SeedUser creates the initial login account when it does not exist yet.
// An empty email disables seeding.
func SeedUser(app *pocketbase.PocketBase, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if password == "" {
		return fmt.Errorf("seed user %s: password is empty", email)
	}

	if _, err := app.FindAuthRecordByEmail(UsersCollection, email); err == nil {
		log.Printf("Seed user %q already exists, skipping.", email)
		return nil
	}

	col, err := app.FindCollectionByNameOrId(UsersCollection)
	if err != nil {
		return fmt.Errorf("find %s collection: %w", UsersCollection, err)
	}

	record := core.NewRecord(col)
	record.SetEmail(email)
	record.SetPassword(password)
	record.SetVerified(true)

	if err := app.Save(record); err != nil {
		return fmt.Errorf("save seed user %s: %w", email, err)
	}

	log.Printf("Seeded login user %q", email)
	return nil
}
