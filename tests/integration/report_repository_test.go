package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecom-auditor/backend/internal/domain/audit"
	"github.com/ecom-auditor/backend/internal/domain/shared"
	"github.com/ecom-auditor/backend/internal/infrastructure/persistence"
)

// TestReportRepository_Integration tests the ReportRepository against a real PostgreSQL database
func TestReportRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormReportRepository(testDB.DB)
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	completedReport := func(auditDate time.Time) *audit.Report {
		report := audit.NewReport(userID, productID, "wildberries")
		report.AuditDate = auditDate
		err := report.Complete(audit.ScoreBreakdown{
			Legal:    100,
			Delivery: 85,
			SEO:      70,
			Price:    90,
			Total:    87.5,
		}, []audit.Finding{
			{
				Kind:        "few_photos",
				Dimension:   audit.DimensionSEO,
				Severity:    audit.SeverityMedium,
				Description: "Listing has 2 photos",
			},
		})
		require.NoError(t, err)
		return report
	}

	t.Run("Append and FindByID roundtrips findings", func(t *testing.T) {
		report := completedReport(time.Now().UTC().Add(-2 * time.Hour))
		require.NoError(t, repo.Append(ctx, report))

		found, err := repo.FindByID(ctx, userID, report.ID)
		require.NoError(t, err)
		assert.Equal(t, audit.ReportStatusCompleted, found.Status)
		assert.Equal(t, 87.5, found.TotalScore)

		findings, err := found.Findings()
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, "few_photos", findings[0].Kind)
	})

	t.Run("ListByProduct returns newest first", func(t *testing.T) {
		newest := completedReport(time.Now().UTC())
		require.NoError(t, repo.Append(ctx, newest))

		reports, err := repo.ListByProduct(ctx, userID, productID, 10)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, newest.ID, reports[0].ID)
		assert.True(t, reports[0].AuditDate.After(reports[1].AuditDate))
	})

	t.Run("ListByUser paginates and counts", func(t *testing.T) {
		reports, total, err := repo.ListByUser(ctx, userID, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, reports, 1)

		reports, total, err = repo.ListByUser(ctx, userID, 10, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, reports, 1)
	})

	t.Run("Reports are scoped to the owner", func(t *testing.T) {
		report := completedReport(time.Now().UTC())
		require.NoError(t, repo.Append(ctx, report))

		_, err := repo.FindByID(ctx, uuid.New(), report.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		reports, total, err := repo.ListByUser(ctx, uuid.New(), 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, reports)
	})

	t.Run("Failed run stores the failure reason", func(t *testing.T) {
		report := audit.NewReport(userID, uuid.New(), "ozon")
		report.Fail("marketplace credentials rejected")
		require.NoError(t, repo.Append(ctx, report))

		found, err := repo.FindByID(ctx, userID, report.ID)
		require.NoError(t, err)
		assert.Equal(t, audit.ReportStatusFailed, found.Status)
		assert.Equal(t, "marketplace credentials rejected", found.FailureReason)
	})
}
