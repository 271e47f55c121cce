package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"witchhunt/internal/ports"
)

// Service handles post-auth onboarding for new users: every fresh account
// gets a period-flavored display name so lobbies never show blank seats.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service. accounts must be non-nil; rng
// may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser names a newly created account. The generated name is
// returned even when the profile write fails so the caller can decide whether
// the failure matters.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}

	displayName := s.generateTownName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		return displayName, fmt.Errorf("failed to update profile: %w", err)
	}
	return displayName, nil
}

func (s *Service) generateTownName() string {
	adjectives := []string{"Pious", "Stern", "Meek", "Wary", "Humble", "Devout", "Sober", "Grave", "Quiet", "Earnest"}
	nouns := []string{"Miller", "Cooper", "Tanner", "Weaver", "Mason", "Shepherd", "Carter", "Fletcher", "Potter", "Smith"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
