package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/domain/shared"
)

// ImportService pulls a seller's full catalog from a marketplace and starts
// tracking every listing that is not tracked yet. Imports are idempotent:
// re-running skips everything already present.
type ImportService struct {
	listings  catalog.ListingRepository
	providers marketplace.ProviderRegistry
	creds     marketplace.CredentialsResolver
	log       *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	listings catalog.ListingRepository,
	providers marketplace.ProviderRegistry,
	creds marketplace.CredentialsResolver,
	log *zap.Logger,
) *ImportService {
	return &ImportService{
		listings:  listings,
		providers: providers,
		creds:     creds,
		log:       log,
	}
}

// ImportAll imports the user's catalog from every marketplace the user has
// credentials for. Catalogs are fetched concurrently, then imported
// sequentially so repository writes stay single-threaded. Marketplaces
// without credentials are reported in their result rather than failing the
// whole batch.
func (s *ImportService) ImportAll(ctx context.Context, userID uuid.UUID) ([]*ImportResult, error) {
	providers := s.providers.Providers()
	results := make([]*ImportResult, len(providers))
	catalogs := make([]*marketplace.CatalogResult, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, provider := range providers {
		g.Go(func() error {
			m := provider.Marketplace()
			creds, err := s.creds.Resolve(gctx, userID, m)
			if err != nil {
				if errors.Is(err, marketplace.ErrProviderNotConfigured) {
					results[i] = &ImportResult{
						Marketplace: m.String(),
						Message:     fmt.Sprintf("No %s credentials configured, skipped", m.DisplayName()),
					}
					return nil
				}
				return err
			}

			fetched, err := provider.FetchCatalog(gctx, creds)
			if err != nil {
				return err
			}
			catalogs[i] = fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, provider := range providers {
		if results[i] != nil || catalogs[i] == nil {
			continue
		}
		result, err := s.importFetched(ctx, userID, provider.Marketplace(), catalogs[i])
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// ImportCatalog fetches and imports the user's catalog from one marketplace
func (s *ImportService) ImportCatalog(ctx context.Context, userID uuid.UUID, m marketplace.Marketplace) (*ImportResult, error) {
	if !m.IsValid() {
		return nil, catalog.ErrInvalidMarketplace
	}

	provider, err := s.providers.Provider(m)
	if err != nil {
		return nil, err
	}

	creds, err := s.creds.Resolve(ctx, userID, m)
	if err != nil {
		if errors.Is(err, marketplace.ErrProviderNotConfigured) {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("No %s credentials configured for import", m.DisplayName()))
		}
		return nil, err
	}

	fetched, err := provider.FetchCatalog(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.importFetched(ctx, userID, m, fetched)
}

// importFetched turns one fetched catalog into tracked listings
func (s *ImportService) importFetched(ctx context.Context, userID uuid.UUID, m marketplace.Marketplace, fetched *marketplace.CatalogResult) (*ImportResult, error) {
	if fetched.AuthFailed {
		return &ImportResult{
			Marketplace: m.String(),
			AuthFailed:  true,
			Message:     fmt.Sprintf("%s rejected the API key, update the credentials and retry", m.DisplayName()),
		}, nil
	}

	result := &ImportResult{Marketplace: m.String()}

	// Marketplaces occasionally repeat items across pages, dedupe first
	seen := make(map[string]struct{}, len(fetched.Listings))
	for _, cl := range fetched.Listings {
		if cl.SKU == "" {
			continue
		}
		if _, dup := seen[cl.SKU]; dup {
			continue
		}
		seen[cl.SKU] = struct{}{}
		result.Total++

		exists, err := s.listings.Exists(ctx, userID, m.String(), cl.SKU)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		listing, err := catalog.NewListingFromCatalog(userID, m, cl)
		if err != nil {
			s.log.Warn("skipping unimportable catalog entry",
				zap.String("marketplace", m.String()),
				zap.String("sku", cl.SKU),
				zap.Error(err))
			result.Skipped++
			continue
		}
		if err := s.listings.Create(ctx, listing); err != nil {
			return nil, err
		}
		result.Imported++
	}

	s.log.Info("catalog import finished",
		zap.String("marketplace", m.String()),
		zap.String("user_id", userID.String()),
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))

	result.Message = fmt.Sprintf("Imported %d of %d listings, %d already tracked",
		result.Imported, result.Total, result.Skipped)
	return result, nil
}
