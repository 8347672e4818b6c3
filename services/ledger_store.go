package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"pricequote/collections"
)

// LoadLedger returns the running quote for a user together with the record
// that stores it. A user without a stored ledger gets a new, unsaved record.
func LoadLedger(app core.App, userID string) (*Ledger, *core.Record, error) {
	existing, err := app.FindRecordsByFilter(
		collections.LedgersCollection,
		"user = {:userId}",
		"",
		1,
		0,
		map[string]any{"userId": userID},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("find ledger: %w", err)
	}
	if len(existing) > 0 {
		rec := existing[0]
		return ledgerFromRecord(rec), rec, nil
	}

	col, err := app.FindCollectionByNameOrId(collections.LedgersCollection)
	if err != nil {
		return nil, nil, fmt.Errorf("%s collection not found: %w", collections.LedgersCollection, err)
	}
	rec := core.NewRecord(col)
	rec.Set("user", userID)
	rec.Set("entries", []string{})
	rec.Set("discount", "0")
	return NewLedger(), rec, nil
}

func ledgerFromRecord(rec *core.Record) *Ledger {
	var entries []string
	if rec.GetString("entries") != "" {
		if err := rec.UnmarshalJSONField("entries", &entries); err != nil {
			entries = nil
		}
	}
	discount, err := decimal.NewFromString(rec.GetString("discount"))
	if err != nil {
		discount = decimal.Zero
	}
	return RestoreLedger(entries, discount)
}

// SaveLedger writes the ledger's entries and discount back to its record.
func SaveLedger(app core.App, rec *core.Record, l *Ledger) error {
	entries := l.Entries()
	if entries == nil {
		entries = []string{}
	}
	rec.Set("entries", entries)
	rec.Set("discount", l.Discount().String())
	if err := app.Save(rec); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// UpdateLedger loads a user's ledger, applies mutate and saves it, all in one
// transaction so concurrent requests for the same user cannot drop each
// other's changes. Nothing is saved when mutate fails; its error is returned
// unwrapped.
func UpdateLedger(app core.App, userID string, mutate func(*Ledger) error) (*Ledger, error) {
	var ledger *Ledger
	err := app.RunInTransaction(func(txApp core.App) error {
		l, rec, err := LoadLedger(txApp, userID)
		if err != nil {
			return err
		}
		if err := mutate(l); err != nil {
			return err
		}
		if err := SaveLedger(txApp, rec, l); err != nil {
			return err
		}
		ledger = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
