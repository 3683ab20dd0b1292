package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecom-auditor/backend/internal/domain/audit"
	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/finance"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/domain/shared"
)

// ErrCredentialsRejected is returned when the marketplace refuses the
// seller's API credentials during the pre-audit refresh
var ErrCredentialsRejected = shared.NewDomainError("INVALID_INPUT", "marketplace credentials rejected, update the API key and retry")

// defaultRunLockTTL bounds how long a crashed run can block its product
const defaultRunLockTTL = 10 * time.Minute

// RunOptions carries optional inputs for a single audit run
type RunOptions struct {
	// PositionSamples is the listing's recent search position history,
	// used by the demotion heuristic when provided
	PositionSamples []marketplace.PositionSample
	// CompetitorPrices maps a platform name to the lowest competitor price
	// observed there, used by the price dumping check when provided
	CompetitorPrices map[string]decimal.Decimal
	// SkipRefresh skips the pre-audit marketplace data refresh
	SkipRefresh bool
}

// RunResult is the outcome of a completed audit run
type RunResult struct {
	Report    *audit.Report
	Breakdown audit.ScoreBreakdown
	Findings  []audit.Finding
	Financial *finance.ProfitBreakdown
}

// Orchestrator drives a full audit run: refresh the listing, execute the
// checks concurrently, compute the unit economics, aggregate the score and
// persist an immutable report. Only one run per product may be in flight.
type Orchestrator struct {
	listings    catalog.ListingRepository
	reports     audit.ReportRepository
	providers   marketplace.ProviderRegistry
	checks      *Checkers
	calc        *finance.Calculator
	commissions *finance.CommissionTable
	guard       audit.RunGuard
	creds       marketplace.CredentialsResolver
	lockTTL     time.Duration
	log         *zap.Logger
}

// NewOrchestrator creates the audit orchestrator
func NewOrchestrator(
	listings catalog.ListingRepository,
	reports audit.ReportRepository,
	providers marketplace.ProviderRegistry,
	checks *Checkers,
	calc *finance.Calculator,
	commissions *finance.CommissionTable,
	guard audit.RunGuard,
	creds marketplace.CredentialsResolver,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		listings:    listings,
		reports:     reports,
		providers:   providers,
		checks:      checks,
		calc:        calc,
		commissions: commissions,
		guard:       guard,
		creds:       creds,
		lockTTL:     defaultRunLockTTL,
		log:         log,
	}
}

// Run executes one audit for the given listing and returns the stored report
func (o *Orchestrator) Run(ctx context.Context, userID, listingID uuid.UUID, opts RunOptions) (*RunResult, error) {
	acquired, err := o.guard.Acquire(ctx, listingID.String(), o.lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, audit.ErrAuditInProgress
	}
	defer func() {
		if releaseErr := o.guard.Release(context.WithoutCancel(ctx), listingID.String()); releaseErr != nil {
			o.log.Warn("failed to release audit run lock",
				zap.String("listing_id", listingID.String()),
				zap.Error(releaseErr))
		}
	}()

	listing, err := o.listings.FindByID(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if !opts.SkipRefresh {
		if authFailed := o.refreshListing(ctx, userID, listing); authFailed {
			return nil, o.failRun(ctx, userID, listing, "marketplace credentials rejected")
		}
	}

	// Legal and marking checks call external registries, run them in
	// parallel. The local checks are cheap and run inline afterwards so
	// the finding order stays deterministic.
	var certFindings, markingFindings []audit.Finding
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		certFindings = o.checks.CheckCertificate(gctx, listing)
		return nil
	})
	g.Go(func() error {
		markingFindings = o.checks.CheckMarking(gctx, listing)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	financial := o.computeFinancial(listing)

	findings := make([]audit.Finding, 0, 8)
	findings = append(findings, certFindings...)
	findings = append(findings, markingFindings...)
	findings = append(findings, o.checks.CheckShadowBan(opts.PositionSamples)...)
	findings = append(findings, o.checks.CheckDelivery(listing)...)
	findings = append(findings, o.checks.CheckSEO(listing)...)
	findings = append(findings, o.checks.CheckPrice(listing, financial, opts.CompetitorPrices)...)

	breakdown, sorted := audit.Aggregate(findings)

	report := audit.NewReport(userID, listingID, listing.Marketplace)
	report.RulesVersion = o.checks.groups.Version
	if err := report.Complete(breakdown, sorted); err != nil {
		return nil, err
	}
	if financial != nil {
		report.NetProfit = financial.NetProfit
		report.MarginPercent = financial.MarginPercent
		report.EffectiveMarginPercent = financial.EffectiveMarginPercent
		if breakeven := o.computeBreakeven(listing); breakeven != nil {
			report.BreakevenPrice = breakeven.BreakevenPrice
		}
	}

	if err := o.reports.Append(ctx, report); err != nil {
		return nil, err
	}

	o.log.Info("audit run completed",
		zap.String("listing_id", listingID.String()),
		zap.Float64("total_score", breakdown.Total),
		zap.String("classification", report.Classification.String()),
		zap.Int("findings", len(sorted)))

	return &RunResult{
		Report:    report,
		Breakdown: breakdown,
		Findings:  sorted,
		Financial: financial,
	}, nil
}

// refreshListing pulls current marketplace data before scoring. Transport
// failures degrade to the stored snapshot rather than failing the run.
// Rejected credentials are reported back so the run can fail with an
// actionable message instead of scoring stale data.
func (o *Orchestrator) refreshListing(ctx context.Context, userID uuid.UUID, listing *catalog.Listing) (authFailed bool) {
	m := marketplace.Marketplace(listing.Marketplace)
	provider, err := o.providers.Provider(m)
	if err != nil {
		return false
	}
	creds, err := o.creds.Resolve(ctx, userID, m)
	if err != nil {
		o.log.Debug("no marketplace credentials, auditing stored snapshot",
			zap.String("listing_id", listing.ID.String()))
		return false
	}

	lookup, err := provider.ValidateSKU(ctx, creds, listing.SKU)
	if err != nil {
		o.log.Warn("marketplace refresh degraded",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
		return false
	}
	if lookup.AuthFailed {
		return true
	}
	if !lookup.Valid || lookup.Listing == nil {
		return false
	}

	listing.RefreshFromCatalog(*lookup.Listing)
	if err := o.listings.Update(ctx, listing); err != nil {
		o.log.Warn("failed to persist refreshed listing",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
	}
	return false
}

// failRun records a failed report for the listing and returns the error the
// caller should surface.
func (o *Orchestrator) failRun(ctx context.Context, userID uuid.UUID, listing *catalog.Listing, reason string) error {
	report := audit.NewReport(userID, listing.ID, listing.Marketplace)
	report.RulesVersion = o.checks.groups.Version
	report.Fail(reason)
	if err := o.reports.Append(ctx, report); err != nil {
		o.log.Warn("failed to persist failed audit report",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
	}
	o.log.Info("audit run failed",
		zap.String("listing_id", listing.ID.String()),
		zap.String("reason", reason))
	return ErrCredentialsRejected
}

// computeFinancial computes unit economics when the listing has enough data
func (o *Orchestrator) computeFinancial(listing *catalog.Listing) *finance.ProfitBreakdown {
	if !listing.Price.IsPositive() || !listing.CostPrice.IsPositive() {
		return nil
	}

	rate, err := o.commissions.Resolve(listing.Marketplace, listing.Category)
	if err != nil {
		o.log.Debug("no commission rate, skipping unit economics",
			zap.String("listing_id", listing.ID.String()),
			zap.String("category", listing.Category))
		return nil
	}

	breakdown, err := o.calc.NetProfit(finance.ProfitInput{
		Price:          listing.Price,
		CostPrice:      listing.CostPrice,
		LogisticsCost:  listing.LogisticsCost,
		CommissionRate: rate,
		VATPayer:       true,
	})
	if err != nil {
		o.log.Warn("unit economics computation failed",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
		return nil
	}
	return breakdown
}

// computeBreakeven computes the minimum viable price for the listing
func (o *Orchestrator) computeBreakeven(listing *catalog.Listing) *finance.BreakevenResult {
	rate, err := o.commissions.Resolve(listing.Marketplace, listing.Category)
	if err != nil {
		return nil
	}
	result, err := o.calc.BreakevenPrice(finance.BreakevenInput{
		CostPrice:      listing.CostPrice,
		LogisticsCost:  listing.LogisticsCost,
		CommissionRate: rate,
		VATPayer:       true,
	})
	if err != nil {
		if !errors.Is(err, finance.ErrInfeasibleInputs) {
			o.log.Warn("breakeven computation failed",
				zap.String("listing_id", listing.ID.String()),
				zap.Error(err))
		}
		return nil
	}
	return result
}

// History returns the user's past reports, newest first
func (o *Orchestrator) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*audit.Report, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return o.reports.ListByUser(ctx, userID, limit, offset)
}

// ProductHistory returns past reports for one listing, newest first
func (o *Orchestrator) ProductHistory(ctx context.Context, userID, listingID uuid.UUID, limit int) ([]*audit.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return o.reports.ListByProduct(ctx, userID, listingID, limit)
}
