package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"witchhunt/internal/app/onboarding"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice is triggered after an account is authenticated.
// It gives new accounts a townsfolk display name so lobbies never show a
// blank seat.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}

	userID := ""
	if ctxUserID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok {
		userID = ctxUserID
	}
	if userID == "" {
		// The hook context can omit the user id; the session token carries it.
		resolvedID, err := sessionUserID(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}

	service := onboarding.NewService(NewNakamaAccountAdapter(nk), nil)
	name, err := service.OnboardNewUser(ctx, userID)
	if err != nil {
		// Naming is best effort; a failed profile write must not block auth.
		logger.Warn("AfterAuthenticateDevice: Failed to name user %s: %v", userID, err)
		return nil
	}

	logger.Info("AfterAuthenticateDevice: Named new user %s as %s", userID, name)
	return nil
}

// sessionUserID pulls the uid claim out of a Nakama session token. The claims
// segment is unpadded base64url.
func sessionUserID(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed session token")
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode session claims: %w", err)
	}

	var claims struct {
		UID string `json:"uid"`
	}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", fmt.Errorf("failed to parse session claims: %w", err)
	}
	if claims.UID == "" {
		return "", fmt.Errorf("session claims carry no uid")
	}

	return claims.UID, nil
}
