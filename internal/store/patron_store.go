package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// PatronStore persists patrons. The card number is the public 6-digit id the
// rest of the system validates against; the PIN is stored hashed.
type PatronStore struct {
	app core.App
}

func NewPatronStore(app core.App) *PatronStore {
	return &PatronStore{app: app}
}

func (s *PatronStore) GetPatronByCardNo(ctx context.Context, cardNo string) (*models.Patron, error) {
	patron := models.Patron{}
	err := s.app.DB().
		Select("id", "card_no", "name", "pin_hash").
		From("patrons").
		Where(dbx.HashExp{"card_no": cardNo}).
		WithContext(ctx).
		One(&patron)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying patron %s: %w", cardNo, err)
	}
	return &patron, nil
}

func (s *PatronStore) InsertPatron(ctx context.Context, patron *models.Patron) (*models.Patron, error) {
	collection, err := s.app.FindCollectionByNameOrId("patrons")
	if err != nil {
		return nil, fmt.Errorf("finding patrons collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("card_no", patron.CardNo)
	record.Set("name", patron.Name)
	record.Set("pin_hash", patron.PINHash)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("saving patron: %w", err)
	}

	patron.ID = record.Id
	return patron, nil
}
