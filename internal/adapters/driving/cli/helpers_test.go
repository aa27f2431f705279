package cli

import (
	"context"
	"errors"
	"time"

	"github.com/warmpath/scout-cli/internal/adapters/driven/storage/memory"
	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
	"github.com/warmpath/scout-cli/internal/core/services"
	"github.com/warmpath/scout-cli/internal/providers/static"
)

// setupTestServices wires the command package against in-memory adapters
// and a deterministic static provider. The returned cleanup restores the
// previous services.
func setupTestServices() func() {
	oldScout := scoutService
	oldLearning := learningService
	oldContacts := contactStore

	scouts := memory.NewScoutStore()
	contacts := memory.NewContactStore()
	learning := memory.NewLearningStore(scouts)

	connectedOn := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	//nolint:errcheck // test fixture
	contacts.Save(context.Background(), domain.Contact{
		ID:             "contact-1",
		Name:           "Jamie Connector",
		CurrentTitle:   "Engineering Manager",
		CurrentCompany: "Acme",
		ConnectedOn:    &connectedOn,
		CreatedAt:      time.Now(),
	})

	provider := static.New("static_seed", []domain.DiscoveredTarget{
		{
			FullName:       "Taylor Candidate",
			CurrentTitle:   "Staff Engineer",
			CurrentCompany: "Acme",
			ProfileURL:     "https://www.linkedin.com/in/taylor-candidate",
			Confidence:     0.9,
		},
	})

	learningSvc := services.NewLearningService(learning)
	scoutSvc := services.NewScoutService(scouts, contacts,
		[]driven.ScoutProvider{provider}, services.ScoutOptions{})
	scoutSvc.SetWeightSource(learningSvc)

	scoutService = scoutSvc
	learningService = learningSvc
	contactStore = contacts

	return func() {
		scoutService = oldScout
		learningService = oldLearning
		contactStore = oldContacts
	}
}

// mockScoutServiceError fails every operation.
type mockScoutServiceError struct{}

func (m *mockScoutServiceError) RunScout(context.Context, domain.ScoutRequest) (*domain.ScoutRun, *domain.RunDiagnostics, error) {
	return nil, nil, errors.New("boom")
}

func (m *mockScoutServiceError) GetRun(context.Context, string) (*domain.ScoutRun, *domain.RunDiagnostics, error) {
	return nil, nil, errors.New("boom")
}

func (m *mockScoutServiceError) ListRuns(context.Context, int) ([]domain.ScoutRun, error) {
	return nil, errors.New("boom")
}

func (m *mockScoutServiceError) Stats(context.Context) (*domain.RunStats, error) {
	return nil, errors.New("boom")
}
