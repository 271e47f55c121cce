package nakama

import (
	"context"

	"witchhunt/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter writes profile changes through Nakama's account API.
// Onboarding uses it to stamp townsfolk display names on fresh accounts.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile sets the username and display name on an existing account.
// The remaining account fields are passed empty so Nakama leaves them alone.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return a.nk.AccountUpdateId(ctx, userID, username, nil, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
