package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecom-auditor/backend/internal/domain/audit"
	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/compliance"
	"github.com/ecom-auditor/backend/internal/domain/finance"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
)

// CheckConfig holds the tunable thresholds for the listing checks
type CheckConfig struct {
	// MinPhotos is the minimum photo count before an SEO finding is raised
	MinPhotos int
	// MinDescriptionLength is the minimum description length in runes
	MinDescriptionLength int
	// MinRating is the buyer rating below which a finding is raised
	MinRating float64
	// MinReviews is the review count below which a finding is raised
	MinReviews int
	// MinSEOKeywords is the keyword count below which an SEO finding is raised
	MinSEOKeywords int
	// MaxLogisticsShare is the logistics-to-price ratio above which a
	// delivery finding is raised
	MaxLogisticsShare decimal.Decimal
	// ThinMarginPercent is the effective margin below which pricing is
	// flagged as thin
	ThinMarginPercent decimal.Decimal
	// CertExpiryWarningDays is how long before a valid certificate's end
	// date an expiring-soon finding is raised
	CertExpiryWarningDays int
	// ShadowBan holds the search demotion detection thresholds
	ShadowBan ShadowBanThresholds
}

// ShadowBanThresholds tunes the search demotion heuristic
type ShadowBanThresholds struct {
	// MinSamples is the minimum number of position observations required
	MinSamples int
	// PositionDropRatio is the relative position worsening that triggers
	// the check, e.g. 0.5 means the position number grew by half
	PositionDropRatio float64
	// ImpressionExcessFactor is how much faster than the position drop the
	// impressions must fall to call the demotion artificial
	ImpressionExcessFactor float64
}

// DefaultCheckConfig returns the built-in check thresholds
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{
		MinPhotos:             3,
		MinDescriptionLength:  300,
		MinRating:             4.0,
		MinReviews:            10,
		MinSEOKeywords:        5,
		MaxLogisticsShare:     decimal.NewFromFloat(0.20),
		ThinMarginPercent:     decimal.NewFromInt(10),
		CertExpiryWarningDays: 30,
		ShadowBan: ShadowBanThresholds{
			MinSamples:             3,
			PositionDropRatio:      0.5,
			ImpressionExcessFactor: 1.5,
		},
	}
}

// Checkers runs the individual audit checks against a listing. External
// registry failures degrade to informational findings rather than failing
// the whole audit.
type Checkers struct {
	accreditation compliance.AccreditationRegistry
	marking       compliance.MarkingRegistry
	groups        *compliance.ProductGroupTable
	cfg           CheckConfig
	log           *zap.Logger
}

// NewCheckers creates the check set
func NewCheckers(
	accreditation compliance.AccreditationRegistry,
	marking compliance.MarkingRegistry,
	groups *compliance.ProductGroupTable,
	cfg CheckConfig,
	log *zap.Logger,
) *Checkers {
	return &Checkers{
		accreditation: accreditation,
		marking:       marking,
		groups:        groups,
		cfg:           cfg,
		log:           log,
	}
}

// CheckCertificate verifies the listing has a usable conformity document.
// One valid certificate clears the check; otherwise the worst status found
// decides the finding.
func (c *Checkers) CheckCertificate(ctx context.Context, listing *catalog.Listing) []audit.Finding {
	query := listing.Name
	if listing.Barcode != "" {
		query = listing.Barcode
	}

	records, err := c.accreditation.FindCertificates(ctx, query)
	if err != nil {
		c.log.Warn("accreditation registry check degraded",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
		return []audit.Finding{{
			Kind:          "certificate_check_unavailable",
			Dimension:     audit.DimensionLegal,
			Severity:      audit.SeverityLow,
			Description:   "The accreditation registry could not be reached, certificate status was not verified",
			Informational: true,
		}}
	}

	if len(records) == 0 {
		return []audit.Finding{{
			Kind:           "certificate_missing",
			Dimension:      audit.DimensionLegal,
			Severity:       audit.SeverityHigh,
			Description:    "No conformity certificate or declaration found for this product",
			Recommendation: "Register a certificate or declaration of conformity before selling",
		}}
	}

	warningWindow := time.Duration(c.cfg.CertExpiryWarningDays) * 24 * time.Hour
	var sawInvalid, sawExpired bool
	var expiringValidTo *time.Time
	for _, record := range records {
		switch record.Status {
		case compliance.CertificateValid:
			// A valid certificate with no published end date, or one that
			// expires beyond the warning window, clears the check outright
			if record.ValidTo == nil || time.Until(*record.ValidTo) > warningWindow {
				return nil
			}
			if expiringValidTo == nil || record.ValidTo.After(*expiringValidTo) {
				expiringValidTo = record.ValidTo
			}
		case compliance.CertificateInvalid:
			sawInvalid = true
		case compliance.CertificateExpired:
			sawExpired = true
		}
	}

	if expiringValidTo != nil {
		days := int(time.Until(*expiringValidTo).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return []audit.Finding{{
			Kind:           "certificate_expiring_soon",
			Dimension:      audit.DimensionLegal,
			Severity:       audit.SeverityMedium,
			Description:    fmt.Sprintf("The conformity certificate is valid but expires in %d days", days),
			Recommendation: "Start the renewal now, re-certification regularly takes several weeks",
		}}
	}

	if sawInvalid {
		return []audit.Finding{{
			Kind:           "certificate_invalid",
			Dimension:      audit.DimensionLegal,
			Severity:       audit.SeverityCritical,
			Description:    "The product's conformity certificate is suspended, terminated or annulled",
			Recommendation: "Obtain a new certificate of conformity, sales may be blocked at any moment",
		}}
	}
	if sawExpired {
		return []audit.Finding{{
			Kind:           "certificate_expired",
			Dimension:      audit.DimensionLegal,
			Severity:       audit.SeverityHigh,
			Description:    "All conformity certificates found for this product have expired",
			Recommendation: "Renew the certificate of conformity",
		}}
	}

	return []audit.Finding{{
		Kind:          "certificate_status_unknown",
		Dimension:     audit.DimensionLegal,
		Severity:      audit.SeverityLow,
		Description:   "Certificates were found but their status could not be determined",
		Informational: true,
	}}
}

// CheckMarking verifies mandatory marking registration for product groups
// that require it.
func (c *Checkers) CheckMarking(ctx context.Context, listing *catalog.Listing) []audit.Finding {
	group, required := c.groups.MatchGroup(listing.Category + " " + listing.Name)
	if !required {
		return nil
	}

	if listing.Barcode == "" {
		return []audit.Finding{{
			Kind:           "marking_no_barcode",
			Dimension:      audit.DimensionLegal,
			Severity:       audit.SeverityHigh,
			Description:    fmt.Sprintf("Product group %q requires mandatory marking but the listing has no barcode to verify", group),
			Recommendation: "Add the product barcode so marking registration can be verified",
		}}
	}

	result, err := c.marking.CheckItem(ctx, listing.Barcode)
	if err != nil {
		c.log.Warn("marking registry check degraded",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
		return []audit.Finding{{
			Kind:          "marking_check_unavailable",
			Dimension:     audit.DimensionLegal,
			Severity:      audit.SeverityLow,
			Description:   "The marking system could not be reached, registration was not verified",
			Informational: true,
		}}
	}

	if !result.Registered {
		return []audit.Finding{{
			Kind:           "marking_missing",
			Dimension:      audit.DimensionLegal,
			Severity:       audit.SeverityHigh,
			Description:    fmt.Sprintf("Product group %q requires mandatory marking but the item is not registered", group),
			Recommendation: "Register the item in the mandatory marking system before selling",
		}}
	}
	return nil
}

// CheckShadowBan looks for artificial search demotion: the position slipping
// while impressions collapse disproportionately faster than the slip alone
// explains.
func (c *Checkers) CheckShadowBan(samples []marketplace.PositionSample) []audit.Finding {
	t := c.cfg.ShadowBan
	if len(samples) < t.MinSamples {
		return nil
	}

	ordered := make([]marketplace.PositionSample, len(samples))
	copy(ordered, samples)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ObservedAt.Before(ordered[j].ObservedAt)
	})

	first, last := ordered[0], ordered[len(ordered)-1]
	if first.Position <= 0 || first.Impressions <= 0 {
		return nil
	}

	positionDrop := float64(last.Position-first.Position) / float64(first.Position)
	if positionDrop < t.PositionDropRatio {
		return nil
	}

	impressionDrop := float64(first.Impressions-last.Impressions) / float64(first.Impressions)
	if impressionDrop < positionDrop*t.ImpressionExcessFactor {
		return nil
	}

	return []audit.Finding{{
		Kind:      "shadow_ban_suspected",
		Dimension: audit.DimensionSEO,
		Severity:  audit.SeverityCritical,
		Description: fmt.Sprintf(
			"Search position slipped %.0f%% while impressions fell %.0f%%, far more than the position change explains",
			positionDrop*100, impressionDrop*100),
		Recommendation: "Contact marketplace support, the listing looks artificially demoted in search",
	}}
}

// Delivery speed tiers in hours. Marketplaces boost fast-delivery listings
// in search, so the tiers mirror their ranking bands.
const (
	deliveryExcellentHours = 18
	deliveryGoodHours      = 24
	deliverySlowHours      = 48
)

// CheckDelivery inspects delivery speed, stock availability and logistics
// economics.
func (c *Checkers) CheckDelivery(listing *catalog.Listing) []audit.Finding {
	var findings []audit.Finding

	switch hours := listing.DeliveryTimeHours; {
	case hours == nil:
		findings = append(findings, audit.Finding{
			Kind:           "delivery_time_unknown",
			Dimension:      audit.DimensionDelivery,
			Severity:       audit.SeverityMedium,
			Description:    "Delivery time is not known, warehouse placement cannot be assessed",
			Recommendation: "Check which warehouses stock the item and record the delivery time",
			Informational:  true,
		})
	case *hours <= deliveryExcellentHours:
		// Fast enough for the premium ranking band, nothing to flag
	case *hours <= deliveryGoodHours:
		findings = append(findings, audit.Finding{
			Kind:           "delivery_could_be_faster",
			Dimension:      audit.DimensionDelivery,
			Severity:       audit.SeverityLow,
			Description:    fmt.Sprintf("Delivery takes %dh, just outside the premium ranking band", *hours),
			Recommendation: "Moving stock to a closer warehouse would lift search positions",
		})
	case *hours <= deliverySlowHours:
		findings = append(findings, audit.Finding{
			Kind:           "slow_delivery",
			Dimension:      audit.DimensionDelivery,
			Severity:       audit.SeverityMedium,
			Description:    fmt.Sprintf("Delivery takes %dh, above the marketplace average", *hours),
			Recommendation: "Place stock in warehouses closer to the big cities",
		})
	default:
		findings = append(findings, audit.Finding{
			Kind:           "very_slow_delivery",
			Dimension:      audit.DimensionDelivery,
			Severity:       audit.SeverityHigh,
			Description:    fmt.Sprintf("Critically slow delivery of %dh", *hours),
			Recommendation: "Spread stock across regional warehouses, slow delivery suppresses both ranking and conversion",
		})
	}

	if !listing.InStock {
		findings = append(findings, audit.Finding{
			Kind:           "out_of_stock",
			Dimension:      audit.DimensionDelivery,
			Severity:       audit.SeverityHigh,
			Description:    "The listing has no sellable stock, it is losing search ranking every day",
			Recommendation: "Replenish stock at the marketplace warehouse",
		})
	}

	if listing.Price.IsPositive() && listing.LogisticsCost.IsPositive() {
		share := listing.LogisticsCost.Div(listing.Price)
		if share.GreaterThan(c.cfg.MaxLogisticsShare) {
			findings = append(findings, audit.Finding{
				Kind:      "logistics_share_high",
				Dimension: audit.DimensionDelivery,
				Severity:  audit.SeverityMedium,
				Description: fmt.Sprintf("Logistics cost is %s%% of the price, above the %s%% threshold",
					share.Mul(decimal.NewFromInt(100)).Round(1),
					c.cfg.MaxLogisticsShare.Mul(decimal.NewFromInt(100)).Round(0)),
				Recommendation: "Review tariffs or raise the price, delivery is eating the margin",
			})
		}
	}

	return findings
}

// CheckSEO inspects content quality and buyer feedback signals
func (c *Checkers) CheckSEO(listing *catalog.Listing) []audit.Finding {
	var findings []audit.Finding

	if len([]rune(listing.Description)) < c.cfg.MinDescriptionLength {
		findings = append(findings, audit.Finding{
			Kind:           "description_too_short",
			Dimension:      audit.DimensionSEO,
			Severity:       audit.SeverityMedium,
			Description:    fmt.Sprintf("Description is shorter than %d characters, search indexing suffers", c.cfg.MinDescriptionLength),
			Recommendation: "Expand the description with key product attributes and search terms",
		})
	}

	if listing.PhotoCount < c.cfg.MinPhotos {
		findings = append(findings, audit.Finding{
			Kind:           "too_few_photos",
			Dimension:      audit.DimensionSEO,
			Severity:       audit.SeverityMedium,
			Description:    fmt.Sprintf("Listing has %d photos, fewer than the recommended %d", listing.PhotoCount, c.cfg.MinPhotos),
			Recommendation: "Add photos from multiple angles and a size chart where relevant",
		})
	}

	if listing.Rating != nil && *listing.Rating < c.cfg.MinRating {
		findings = append(findings, audit.Finding{
			Kind:           "low_rating",
			Dimension:      audit.DimensionSEO,
			Severity:       audit.SeverityHigh,
			Description:    fmt.Sprintf("Buyer rating %.1f is below %.1f", *listing.Rating, c.cfg.MinRating),
			Recommendation: "Work through negative reviews and fix the underlying product complaints",
		})
	}

	if listing.ReviewCount < c.cfg.MinReviews {
		findings = append(findings, audit.Finding{
			Kind:           "few_reviews",
			Dimension:      audit.DimensionSEO,
			Severity:       audit.SeverityLow,
			Description:    fmt.Sprintf("Only %d reviews, conversion suffers below %d", listing.ReviewCount, c.cfg.MinReviews),
			Recommendation: "Enable review campaigns or sampling to gather initial reviews",
		})
	}

	if keywords := listing.SEOKeywords(); len(keywords) < c.cfg.MinSEOKeywords {
		findings = append(findings, audit.Finding{
			Kind:           "insufficient_keywords",
			Dimension:      audit.DimensionSEO,
			Severity:       audit.SeverityLow,
			Description:    fmt.Sprintf("Only %d search keywords recorded, fewer than the recommended %d", len(keywords), c.cfg.MinSEOKeywords),
			Recommendation: "Collect search queries the listing should rank for and record them as keywords",
		})
	}

	return findings
}

// priceDumpingFactor flags competitors undercutting the listing by more
// than 5%.
var priceDumpingFactor = decimal.NewFromFloat(0.95)

// CheckPrice inspects the unit economics computed for the listing and
// compares the price against caller-supplied competitor prices.
// A nil breakdown means the listing had no usable price or cost data.
func (c *Checkers) CheckPrice(listing *catalog.Listing, breakdown *finance.ProfitBreakdown, competitorPrices map[string]decimal.Decimal) []audit.Finding {
	if !listing.Price.IsPositive() {
		return []audit.Finding{{
			Kind:           "price_missing",
			Dimension:      audit.DimensionPrice,
			Severity:       audit.SeverityMedium,
			Description:    "The listing has no price, unit economics cannot be evaluated",
			Recommendation: "Set a price on the marketplace and refresh the listing",
		}}
	}

	var findings []audit.Finding

	switch {
	case breakdown == nil:
		if listing.CostPrice.IsZero() {
			findings = append(findings, audit.Finding{
				Kind:          "cost_data_missing",
				Dimension:     audit.DimensionPrice,
				Severity:      audit.SeverityLow,
				Description:   "No cost price entered, profitability was not evaluated",
				Informational: true,
			})
		}
	case breakdown.NetProfit.IsNegative():
		findings = append(findings, audit.Finding{
			Kind:      "selling_below_breakeven",
			Dimension: audit.DimensionPrice,
			Severity:  audit.SeverityHigh,
			Description: fmt.Sprintf("Each sale loses %s RUB, the price is below breakeven",
				breakdown.NetProfit.Neg().Round(2)),
			Recommendation: "Raise the price or cut costs, every order is sold at a loss",
		})
	case breakdown.EffectiveMarginPercent.LessThan(c.cfg.ThinMarginPercent):
		findings = append(findings, audit.Finding{
			Kind:      "thin_margin",
			Dimension: audit.DimensionPrice,
			Severity:  audit.SeverityLow,
			Description: fmt.Sprintf("Effective margin is %s%%, below the %s%% comfort threshold",
				breakdown.EffectiveMarginPercent.Round(2), c.cfg.ThinMarginPercent),
			Recommendation: "A single tariff increase can push this listing into losses",
		})
	}

	dumpingFloor := listing.Price.Mul(priceDumpingFactor)
	platforms := make([]string, 0, len(competitorPrices))
	for platform := range competitorPrices {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	for _, platform := range platforms {
		price := competitorPrices[platform]
		if !price.IsPositive() || !price.LessThan(dumpingFloor) {
			continue
		}
		findings = append(findings, audit.Finding{
			Kind:      "price_dumping",
			Dimension: audit.DimensionPrice,
			Severity:  audit.SeverityMedium,
			Description: fmt.Sprintf("A competitor on %s sells at %s RUB, more than 5%% below this listing's %s RUB",
				platform, price.Round(2), listing.Price.Round(2)),
			Recommendation: "Review the price or justify the premium with content and service",
		})
	}

	return findings
}
