package entitlements

import (
	"context"

	"github.com/PromptBay/promptbay/app/models"
	"github.com/PromptBay/promptbay/internal/pkg/payments"
)

// CanAccessPrompt decides whether a buyer may read a listing's gated
// content. Free listings are always readable. Premium listings require
// a completed purchase in the ledger. The check is evaluated on every
// content read and never cached: entitlement can appear asynchronously
// through webhook reconciliation after a failed in-browser confirmation.
func CanAccessPrompt(ctx context.Context, svc *payments.Service, userID uint, prompt *models.Prompt) (bool, error) {
	if prompt == nil {
		return false, nil
	}
	if !prompt.IsPremium {
		return true, nil
	}
	if userID == 0 {
		return false, nil
	}
	return svc.HasCompletedPurchase(ctx, userID, prompt.ID)
}
