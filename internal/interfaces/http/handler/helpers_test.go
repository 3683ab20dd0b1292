package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditapp "github.com/ecom-auditor/backend/internal/application/audit"
	catalogapp "github.com/ecom-auditor/backend/internal/application/catalog"
	financeapp "github.com/ecom-auditor/backend/internal/application/finance"
	"github.com/ecom-auditor/backend/internal/domain/audit"
	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/compliance"
	"github.com/ecom-auditor/backend/internal/domain/finance"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/domain/shared"
	"github.com/ecom-auditor/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type memListingRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*catalog.Listing
}

func newMemListingRepo(listings ...*catalog.Listing) *memListingRepo {
	repo := &memListingRepo{items: make(map[uuid.UUID]*catalog.Listing)}
	for _, l := range listings {
		repo.items[l.ID] = l
	}
	return repo
}

func (r *memListingRepo) Create(_ context.Context, listing *catalog.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = listing
	return nil
}

func (r *memListingRepo) Update(_ context.Context, listing *catalog.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = listing
	return nil
}

func (r *memListingRepo) Delete(_ context.Context, _, listingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[listingID]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, listingID)
	return nil
}

func (r *memListingRepo) FindByID(_ context.Context, userID, listingID uuid.UUID) (*catalog.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.items[listingID]
	if !ok || listing.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return listing, nil
}

func (r *memListingRepo) FindBySKU(_ context.Context, userID uuid.UUID, mkt, sku string) (*catalog.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.items {
		if l.UserID == userID && l.Marketplace == mkt && l.SKU == sku {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memListingRepo) Exists(ctx context.Context, userID uuid.UUID, mkt, sku string) (bool, error) {
	_, err := r.FindBySKU(ctx, userID, mkt, sku)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memListingRepo) List(_ context.Context, userID uuid.UUID, _ catalog.ListingFilter) ([]*catalog.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Listing
	for _, l := range r.items {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

type memReportRepo struct {
	mu      sync.Mutex
	reports []*audit.Report
}

func (r *memReportRepo) Append(_ context.Context, report *audit.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *memReportRepo) FindByID(_ context.Context, userID, reportID uuid.UUID) (*audit.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.ID == reportID && rep.UserID == userID {
			return rep, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memReportRepo) ListByProduct(_ context.Context, userID, productID uuid.UUID, limit int) ([]*audit.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*audit.Report
	for i := len(r.reports) - 1; i >= 0 && len(out) < limit; i-- {
		if r.reports[i].UserID == userID && r.reports[i].ProductID == productID {
			out = append(out, r.reports[i])
		}
	}
	return out, nil
}

func (r *memReportRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, _ int) ([]*audit.Report, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*audit.Report
	for i := len(r.reports) - 1; i >= 0 && len(out) < limit; i-- {
		if r.reports[i].UserID == userID {
			out = append(out, r.reports[i])
		}
	}
	return out, int64(len(out)), nil
}

type fakeGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{held: make(map[string]bool)}
}

func (g *fakeGuard) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

type fakeProvider struct {
	m       marketplace.Marketplace
	catalog *marketplace.CatalogResult
	lookup  *marketplace.SkuLookup
	err     error
}

func (p *fakeProvider) Marketplace() marketplace.Marketplace {
	return p.m
}

func (p *fakeProvider) FetchCatalog(_ context.Context, _ marketplace.Credentials) (*marketplace.CatalogResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.catalog, nil
}

func (p *fakeProvider) ValidateSKU(_ context.Context, _ marketplace.Credentials, _ string) (*marketplace.SkuLookup, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.lookup, nil
}

type fakeProviders struct {
	provider marketplace.CatalogProvider
}

func (f *fakeProviders) Provider(_ marketplace.Marketplace) (marketplace.CatalogProvider, error) {
	if f.provider == nil {
		return nil, marketplace.ErrProviderNotRegistered
	}
	return f.provider, nil
}

func (f *fakeProviders) Providers() []marketplace.CatalogProvider {
	if f.provider == nil {
		return nil
	}
	return []marketplace.CatalogProvider{f.provider}
}

type fakeCreds struct {
	creds map[marketplace.Marketplace]marketplace.Credentials
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{creds: make(map[marketplace.Marketplace]marketplace.Credentials)}
}

func (f *fakeCreds) Resolve(_ context.Context, _ uuid.UUID, m marketplace.Marketplace) (marketplace.Credentials, error) {
	creds, ok := f.creds[m]
	if !ok {
		return marketplace.Credentials{}, marketplace.ErrProviderNotConfigured
	}
	return creds, nil
}

type fakeAccreditation struct {
	records []compliance.CertificateRecord
	err     error
}

func (f *fakeAccreditation) FindCertificates(_ context.Context, _ string) ([]compliance.CertificateRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeMarking struct {
	result *compliance.MarkingResult
	err    error
}

func (f *fakeMarking) CheckItem(_ context.Context, _ string) (*compliance.MarkingResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// ---------------------------------------------------------------------------
// Test harness
// ---------------------------------------------------------------------------

// apiHarness wires real application services over in-memory fakes behind a
// gin engine. Requests authenticate via the X-User-ID development fallback.
type apiHarness struct {
	engine    *gin.Engine
	userID    uuid.UUID
	listings  *memListingRepo
	reports   *memReportRepo
	guard     *fakeGuard
	providers *fakeProviders
	creds     *fakeCreds
	acc       *fakeAccreditation
	marking   *fakeMarking
}

func newAPIHarness(listings ...*catalog.Listing) *apiHarness {
	h := &apiHarness{
		userID:    uuid.New(),
		listings:  newMemListingRepo(listings...),
		reports:   &memReportRepo{},
		guard:     newFakeGuard(),
		providers: &fakeProviders{},
		creds:     newFakeCreds(),
		acc:       &fakeAccreditation{records: []compliance.CertificateRecord{{Status: compliance.CertificateValid}}},
		marking:   &fakeMarking{result: &compliance.MarkingResult{Registered: true}},
	}

	log := zap.NewNop()

	table := finance.NewCommissionTable("test")
	table.SetDefault("wildberries", finance.CommissionRange{
		Min: decimal.NewFromFloat(0.10),
		Max: decimal.NewFromFloat(0.10),
	})
	calc := finance.NewCalculator()

	checkers := auditapp.NewCheckers(h.acc, h.marking, compliance.DefaultProductGroupTable(), auditapp.DefaultCheckConfig(), log)
	orchestrator := auditapp.NewOrchestrator(h.listings, h.reports, h.providers, checkers, calc, table, h.guard, h.creds, log)

	listingService := catalogapp.NewListingService(h.listings, h.providers, h.creds, log)
	importService := catalogapp.NewImportService(h.listings, h.providers, h.creds, log)
	financeService := financeapp.NewService(calc, table)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewListingHandler(listingService, importService).RegisterRoutes(api)
	NewAuditHandler(orchestrator).RegisterRoutes(api)
	NewFinanceHandler(financeService).RegisterRoutes(api)

	h.engine = engine
	return h
}

// do performs an authenticated request against the harness engine
func (h *apiHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", h.userID.String())

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// doAnonymous performs a request without authentication
func (h *apiHarness) doAnonymous(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// decodeResponse unmarshals the envelope and returns it
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// dataMap returns the response data as a generic map
func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "response data is not an object: %T", resp.Data)
	return data
}

// trackedListing builds a fully populated listing owned by the given user
func trackedListing(t *testing.T, userID uuid.UUID) *catalog.Listing {
	t.Helper()
	listing, err := catalog.NewListing(userID, marketplace.Wildberries, "12345678", "Термокружка стальная 500 мл")
	require.NoError(t, err)

	rating := 4.8
	hours := 12
	listing.Barcode = "4600000000017"
	listing.Category = "Посуда"
	listing.Price = decimal.NewFromInt(5000)
	listing.CostPrice = decimal.NewFromInt(2000)
	listing.LogisticsCost = decimal.NewFromInt(200)
	listing.Rating = &rating
	listing.ReviewCount = 50
	listing.Description = longDescription()
	listing.PhotoCount = 6
	listing.InStock = true
	listing.DeliveryTimeHours = &hours
	require.NoError(t, listing.SetSEOKeywords([]string{
		"термокружка", "кружка стальная", "термокружка 500 мл", "кружка для кофе", "термопосуда",
	}))
	return listing
}

func longDescription() string {
	out := make([]rune, 320)
	for i := range out {
		out[i] = 'х'
	}
	return string(out)
}
