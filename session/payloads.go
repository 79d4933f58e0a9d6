package session

import (
	"time"

	"github.com/grcops/go-session-server/internal/utils"
	"github.com/grcops/go-session-server/token"
)

// Claim names used inside the signed slot payloads. These are the payload's
// own vocabulary, distinct from the registered claims the codec adds.
const (
	claimAccessToken          = "accessToken"
	claimExpiresAt            = "expiresAt"
	claimUser                 = "user"
	claimMerchantID           = "merchantID"
	claimUserPermissions      = "userPermissions"
	claimKYC                  = "kyc"
	claimWorkspaceIDs         = "workspaceIDs"
	claimWorkspacePermissions = "workspacePermissions"
)

// AuthPayload is the content of the auth slot. Its AccessToken is the
// credential issued by the external auth backend, not the cookie token itself.
type AuthPayload struct {
	AccessToken string
	ExpiresAt   time.Time
}

// AuthUpdate carries a partial auth-slot update. Nil fields retain the
// current value.
type AuthUpdate struct {
	AccessToken *string
	ExpiresAt   *time.Time
}

// UserPayload is the content of the user slot.
type UserPayload struct {
	User            map[string]any
	MerchantID      string
	UserPermissions map[string]any
	KYC             map[string]any
}

// WorkspacePayload is the content of the workspace slot.
type WorkspacePayload struct {
	WorkspaceIDs         []string
	WorkspacePermissions map[string]any
}

// WorkspaceUpdate carries a partial workspace-slot update. Nil fields retain
// the current value, so an absent permissions map never clobbers the stored one.
type WorkspaceUpdate struct {
	WorkspaceIDs         []string
	WorkspacePermissions map[string]any
}

func (p AuthPayload) claims() token.Payload {
	return token.Payload{
		claimAccessToken: p.AccessToken,
		claimExpiresAt:   p.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func authFromClaims(claims token.Payload) *AuthPayload {
	p := &AuthPayload{}
	p.AccessToken, _ = claims[claimAccessToken].(string)
	if raw, ok := claims[claimExpiresAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			p.ExpiresAt = t
		}
	}
	return p
}

func (p UserPayload) claims() token.Payload {
	return token.Payload{
		claimUser:            p.User,
		claimMerchantID:      p.MerchantID,
		claimUserPermissions: p.UserPermissions,
		claimKYC:             p.KYC,
	}
}

func userFromClaims(claims token.Payload) *UserPayload {
	p := &UserPayload{}
	p.User, _ = claims[claimUser].(map[string]any)
	p.MerchantID, _ = claims[claimMerchantID].(string)
	p.UserPermissions, _ = claims[claimUserPermissions].(map[string]any)
	p.KYC, _ = claims[claimKYC].(map[string]any)
	return p
}

func (p WorkspacePayload) claims() token.Payload {
	return token.Payload{
		claimWorkspaceIDs:         p.WorkspaceIDs,
		claimWorkspacePermissions: p.WorkspacePermissions,
	}
}

func workspaceFromClaims(claims token.Payload) *WorkspacePayload {
	p := &WorkspacePayload{}
	if ids, ok := claims[claimWorkspaceIDs].([]any); ok {
		// JSON round-trips string slices as []any
		p.WorkspaceIDs = utils.ToStringSlice(ids)
	} else if ids, ok := claims[claimWorkspaceIDs].([]string); ok {
		p.WorkspaceIDs = ids
	}
	p.WorkspacePermissions, _ = claims[claimWorkspacePermissions].(map[string]any)
	return p
}
