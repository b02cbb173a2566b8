// Package lifecycle owns the claim and found-report workflows: the state
// transitions, the authorization rules gating them, and the notifications
// they trigger. Persistence and mail are injected so the rules can be tested
// without a relay.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opencampus/lostfound/internal/mail"
	"github.com/opencampus/lostfound/internal/model"
	"github.com/opencampus/lostfound/internal/store"
)

// Claims manages claims on found items.
//
// A claim starts pending and moves to exactly one of approved or rejected;
// there is no path back. Only the found item's poster or an admin may list an
// item's claims or decide them, and only the claimer may withdraw one.
type Claims struct {
	DB     *sql.DB
	Mailer mail.Mailer
}

// Create files a pending claim on a found item. Claiming your own item is
// invalid, and a second pending claim by the same user on the same item is a
// conflict.
func (s *Claims) Create(ctx context.Context, foundItemID int64, p Principal, message string) (*model.Claim, error) {
	if foundItemID <= 0 {
		return nil, validation("found item id required")
	}
	if p.UserID <= 0 {
		return nil, unauthorized("not authenticated")
	}

	item, err := store.GetFoundItem(ctx, s.DB, foundItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("found item not found")
	}
	if item.UserID == p.UserID {
		return nil, validation("cannot claim your own found item")
	}

	pending, err := store.HasPendingClaim(ctx, s.DB, foundItemID, p.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, conflict("you already have a pending claim on this item")
	}

	claim, err := store.CreateClaim(ctx, s.DB, foundItemID, p.UserID, message)
	// A concurrent create can slip past the pre-check; the unique index
	// catches it and it is still a conflict, not an internal error.
	if errors.Is(err, store.ErrDuplicateClaim) {
		return nil, conflict("you already have a pending claim on this item")
	}
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// ListForItem returns all claims on a found item. Restricted to the item's
// poster or an admin.
func (s *Claims) ListForItem(ctx context.Context, foundItemID int64, p Principal) ([]model.Claim, error) {
	item, err := store.GetFoundItem(ctx, s.DB, foundItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("found item not found")
	}
	if item.UserID != p.UserID && p.Role != model.RoleAdmin {
		return nil, forbidden("only the item poster or an admin may view its claims")
	}

	return store.ListClaimsForItem(ctx, s.DB, foundItemID)
}

// ListForUser returns the caller's own claims.
func (s *Claims) ListForUser(ctx context.Context, p Principal) ([]model.Claim, error) {
	return store.ListClaimsByUser(ctx, s.DB, p.UserID)
}

// Get returns a single claim. Visible to the claimer, the item poster, and admins.
func (s *Claims) Get(ctx context.Context, claimID int64, p Principal) (*model.Claim, error) {
	claim, err := store.GetClaim(ctx, s.DB, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, notFound("claim not found")
	}
	if claim.ClaimerID != p.UserID && claim.ItemOwnerID != p.UserID && p.Role != model.RoleAdmin {
		return nil, forbidden("not entitled to view this claim")
	}
	return claim, nil
}

// UpdateStatus decides a pending claim. Only the item poster or an admin may
// decide, and only approved/rejected are accepted. On approval the claimer is
// notified of the pickup location; a failed send is logged, never surfaced.
func (s *Claims) UpdateStatus(ctx context.Context, claimID int64, newStatus string, p Principal) (*model.Claim, error) {
	if newStatus != model.ClaimStatusApproved && newStatus != model.ClaimStatusRejected {
		return nil, validation("status must be 'approved' or 'rejected'")
	}

	claim, err := store.GetClaim(ctx, s.DB, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, notFound("claim not found")
	}
	if claim.ItemOwnerID != p.UserID && p.Role != model.RoleAdmin {
		return nil, forbidden("only the item poster or an admin may decide a claim")
	}
	if model.ClaimStatusTerminal(claim.Status) {
		return nil, conflict(fmt.Sprintf("claim already %s", claim.Status))
	}

	if err := store.UpdateClaimStatus(ctx, s.DB, claimID, newStatus); err != nil {
		return nil, err
	}
	claim.Status = newStatus

	if newStatus == model.ClaimStatusApproved {
		err := s.Mailer.Send(ctx, mail.Message{
			To:      claim.ClaimerEmail,
			Subject: "Your claim has been approved",
			Text: fmt.Sprintf("Your claim for %q has been approved. You can pick up the item at: %s.",
				claim.ItemName, claim.PickupLocation),
		})
		if err != nil {
			slog.Error("claim approval notification failed", "claim_id", claimID, "error", err)
		}
	}

	return claim, nil
}

// Delete withdraws a claim. Only the original claimer may delete; anyone else
// gets not-found so claim existence is not leaked.
func (s *Claims) Delete(ctx context.Context, claimID int64, p Principal) error {
	ok, err := store.DeleteClaimOwned(ctx, s.DB, claimID, p.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("claim not found")
	}
	return nil
}
