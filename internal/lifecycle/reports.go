package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/opencampus/lostfound/internal/mail"
	"github.com/opencampus/lostfound/internal/model"
	"github.com/opencampus/lostfound/internal/store"
)

// Reports manages found-reports: a third party's assertion that they located
// another user's lost item.
//
// Only the lost item's poster or an admin may confirm a return. The finder
// filing the report cannot mark it returned themselves.
type Reports struct {
	DB     *sql.DB
	Mailer mail.Mailer
}

// Create files a pending found-report and notifies the lost item's poster.
// The notification is best-effort; a failed send never fails the create.
func (s *Reports) Create(ctx context.Context, lostItemID int64, p Principal, message, pickupLocation string) (*model.FoundReport, error) {
	if lostItemID <= 0 {
		return nil, validation("lost item id required")
	}
	if pickupLocation == "" {
		return nil, validation("pickup location required")
	}
	if p.UserID <= 0 {
		return nil, unauthorized("not authenticated")
	}

	item, err := store.GetLostItem(ctx, s.DB, lostItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("lost item not found")
	}
	if item.UserID == p.UserID {
		return nil, validation("cannot report your own lost item as found")
	}

	report, err := store.CreateFoundReport(ctx, s.DB, lostItemID, p.UserID, message, pickupLocation)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Someone reported finding your lost item %q. You can pick it up at: %s.",
		report.ItemName, report.PickupLocation)
	if report.Message != "" {
		text += fmt.Sprintf(" Message from the finder: %s", report.Message)
	}
	if err := s.Mailer.Send(ctx, mail.Message{
		To:      report.OwnerEmail,
		Subject: "Your lost item may have been found",
		Text:    text,
	}); err != nil {
		slog.Error("found-report notification failed", "report_id", report.ID, "error", err)
	}

	return report, nil
}

// ListFiledByUser returns reports the caller filed.
func (s *Reports) ListFiledByUser(ctx context.Context, p Principal) ([]model.FoundReport, error) {
	return store.ListFoundReportsByFinder(ctx, s.DB, p.UserID)
}

// ListAboutMyLostItems returns reports concerning lost items the caller posted.
func (s *Reports) ListAboutMyLostItems(ctx context.Context, p Principal) ([]model.FoundReport, error) {
	return store.ListFoundReportsForOwner(ctx, s.DB, p.UserID)
}

// UpdateStatus confirms or reopens nothing: the only transition is pending to
// returned, and only the lost item's poster or an admin may make it.
func (s *Reports) UpdateStatus(ctx context.Context, reportID int64, newStatus string, p Principal) (*model.FoundReport, error) {
	if newStatus != model.ReportStatusPending && newStatus != model.ReportStatusReturned {
		return nil, validation("status must be 'pending' or 'returned'")
	}

	report, err := store.GetFoundReport(ctx, s.DB, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, notFound("report not found")
	}
	if report.ItemOwnerID != p.UserID && p.Role != model.RoleAdmin {
		return nil, forbidden("only the lost item's poster or an admin may confirm a return")
	}
	if report.Status == model.ReportStatusReturned {
		return nil, conflict("report already marked returned")
	}
	if newStatus == report.Status {
		return report, nil
	}

	if err := store.UpdateFoundReportStatus(ctx, s.DB, reportID, newStatus); err != nil {
		return nil, err
	}
	report.Status = newStatus
	return report, nil
}

// Delete withdraws a report. Only the original finder may delete; anyone else
// gets not-found so report existence is not leaked.
func (s *Reports) Delete(ctx context.Context, reportID int64, p Principal) error {
	ok, err := store.DeleteFoundReportOwned(ctx, s.DB, reportID, p.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("report not found")
	}
	return nil
}
