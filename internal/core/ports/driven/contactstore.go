package driven

import (
	"context"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

// ContactStore provides access to the seeker's contact book. The scorer only
// reads from it; writes exist for seeding and imports outside the pipeline.
type ContactStore interface {
	// FindByCompany returns contacts whose current company matches the given
	// company name (normalised comparison).
	FindByCompany(ctx context.Context, company string) ([]domain.Contact, error)

	// List returns up to limit contacts, most recently added first.
	List(ctx context.Context, limit int) ([]domain.Contact, error)

	// Save stores or updates a contact.
	Save(ctx context.Context, contact domain.Contact) error
}
