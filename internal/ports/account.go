package ports

import "context"

// AccountPort updates account profiles. Onboarding uses it to stamp generated
// display names onto fresh accounts.
type AccountPort interface {
	// UpdateProfile applies username/displayName to the given account.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
