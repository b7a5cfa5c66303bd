package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/freitasmatheusrn/supplier-sync/internal/catalog"
	"github.com/freitasmatheusrn/supplier-sync/internal/database"
	"github.com/freitasmatheusrn/supplier-sync/internal/identifier"
	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
	"github.com/freitasmatheusrn/supplier-sync/internal/reconcile"
	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/submission"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MockStore keeps sessions JSON encoded, like the redis store does.
type MockStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *MockStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MockStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.data[s.ID] = b
	return nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type MockMaster struct {
	parent    synthesis.ParentMeta
	suppliers []synthesis.SupplierMeta
	rows      []reconcile.MasterRow
	eans      []string
	itemIDs   []int
}

func (m *MockMaster) FetchByParentName(ctx context.Context, name string) (synthesis.ParentMeta, []synthesis.SupplierMeta, []reconcile.MasterRow, error) {
	return m.parent, m.suppliers, m.rows, nil
}

func (m *MockMaster) SearchParents(ctx context.Context, term string) ([]ParentSummary, error) {
	return []ParentSummary{{ID: m.parent.ID, ParentNoDE: m.parent.ParentNoDE, NameEN: m.parent.NameEN}}, nil
}

func (m *MockMaster) UsedIdentifiers(ctx context.Context) ([]string, []int, error) {
	return m.eans, m.itemIDs, nil
}

type MockGateway struct {
	mu          sync.Mutex
	insertCalls [][]synthesis.Record
	insertErr   func(call int) error
	updateErr   func(u reconcile.SupplierUpdate) error
	updates     []reconcile.SupplierUpdate
}

func (m *MockGateway) InsertRecords(ctx context.Context, records []synthesis.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls = append(m.insertCalls, records)
	if m.insertErr != nil {
		if err := m.insertErr(len(m.insertCalls)); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}

func (m *MockGateway) UpdateSupplierFields(ctx context.Context, updates []reconcile.SupplierUpdate) ([]error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := make([]error, len(updates))
	var chunkErr error
	for i, u := range updates {
		if m.updateErr != nil {
			errs[i] = m.updateErr(u)
		}
		if errs[i] == nil {
			m.updates = append(m.updates, u)
		} else if chunkErr == nil && database.IsUnavailable(errs[i]) {
			chunkErr = errs[i]
		}
	}
	return errs, chunkErr
}

type MockConstants struct{}

func (MockConstants) Values(ctx context.Context) (map[string]decimal.Decimal, *rest.ApiErr) {
	return map[string]decimal.Decimal{"rate": decimal.NewFromInt(7)}, nil
}

type MockSubClasses struct {
	rules rules.RuleSet
	ops   synthesis.DimensionOperations
}

func (m MockSubClasses) AttributeModifications(ctx context.Context, id pgtype.UUID) (rules.RuleSet, *rest.ApiErr) {
	return m.rules, nil
}

func (m MockSubClasses) DimensionOperations(ctx context.Context, id pgtype.UUID) (synthesis.DimensionOperations, *rest.ApiErr) {
	return m.ops, nil
}

type MockCatalog struct {
	products []catalog.Product
}

func (m MockCatalog) GetProduct(ctx context.Context, id pgtype.UUID) (*catalog.Product, *rest.ApiErr) {
	if len(m.products) == 0 {
		return nil, rest.NewNotFoundError("produto nao encontrado")
	}
	return &m.products[0], nil
}

func (m MockCatalog) ListProducts(ctx context.Context, subClassID *pgtype.UUID) ([]catalog.Product, *rest.ApiErr) {
	return m.products, nil
}

type MockEmail struct {
	mu   sync.Mutex
	sent []string
}

func (m *MockEmail) Send(subject, text, html string, recipients []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, subject)
	return nil
}

const uploadCSV = `Attributes1,Attributes2,URL,price,weight
Red,S,https://s.example/1,10,1.5
Red,M,https://s.example/2,11,1.5
Blue,S,https://s.example/3,12,1
Blue,M,https://s.example/4,13,2
`

type fixture struct {
	svc     Service
	store   *MockStore
	gateway *MockGateway
	email   *MockEmail
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	logger := zap.NewNop()
	engine := rules.NewEngine(logger)
	f := &fixture{
		store:   &MockStore{data: map[string][]byte{}},
		gateway: &MockGateway{},
		email:   &MockEmail{},
	}
	master := &MockMaster{
		parent:    synthesis.ParentMeta{ID: 7, ParentNoDE: "P-100", NameEN: "Cable", NameDE: "Kabel"},
		suppliers: []synthesis.SupplierMeta{{SupplierID: 3, SuppCat: "C1", TariffCode: "8544"}},
		rows: []reconcile.MasterRow{
			{ItemID: 101, EAN: "6230000000017", ValueDE: "Red", ValueDE2: "S", URL: "https://s.example/1", PriceRMB: "10.00"},
			{ItemID: 102, EAN: "6230000000024", ValueDE: "Red", ValueDE2: "M", URL: "https://old.example/2", PriceRMB: "11"},
		},
		eans:    []string{"6230000000017", "6230000000024"},
		itemIDs: []int{101, 102},
	}
	if cfg.AlertRecipients == nil {
		cfg.AlertRecipients = []string{"ops@example.com"}
	}
	f.svc = NewService(Deps{
		Store:       f.store,
		Master:      master,
		Gateway:     f.gateway,
		Constants:   MockConstants{},
		SubClasses:  MockSubClasses{},
		Catalog:     MockCatalog{},
		Engine:      engine,
		Synthesizer: synthesis.NewSynthesizer(engine, logger),
		Email:       f.email,
		Logger:      logger,
		Random:      rand.New(rand.NewPCG(1, 2)),
	}, cfg)
	return f
}

// synthesized uploads the sample sheet, compares it and synthesizes the
// missing rows.
func (f *fixture) synthesized(t *testing.T) *View {
	t.Helper()
	ctx := context.Background()
	view, apiErr := f.svc.Upload(ctx, "upload.csv", strings.NewReader(uploadCSV), "")
	if apiErr != nil {
		t.Fatalf("upload: %v", apiErr)
	}
	if _, apiErr := f.svc.Compare(ctx, view.ID, CompareInput{ParentName: "Cable"}); apiErr != nil {
		t.Fatalf("compare: %v", apiErr)
	}
	view, apiErr = f.svc.Synthesize(ctx, view.ID)
	if apiErr != nil {
		t.Fatalf("synthesize: %v", apiErr)
	}
	return view
}

func TestWorkflow_CompareAndSynthesize(t *testing.T) {
	f := newFixture(t, Config{})
	view := f.synthesized(t)

	if len(view.Common) != 2 || len(view.Missing) != 2 {
		t.Fatalf("expected 2 common and 2 missing, got %d and %d", len(view.Common), len(view.Missing))
	}
	if view.Common[0].PriceStatus != reconcile.StatusMatches {
		t.Errorf("expected 10.00 and 10 to match, got %s", view.Common[0].PriceStatus)
	}
	if view.Common[1].URLStatus != reconcile.StatusDifferent {
		t.Errorf("expected url of item 102 to differ")
	}
	if view.AllMatch {
		t.Error("expected AllMatch to be false")
	}

	if len(view.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(view.Records))
	}
	seen := map[int]bool{101: true, 102: true}
	for _, r := range view.Records {
		if !identifier.Valid(r.TItem.EAN) {
			t.Errorf("invalid ean %s", r.TItem.EAN)
		}
		if seen[r.VariationValues.ItemNoDE] {
			t.Errorf("item id %d reused", r.VariationValues.ItemNoDE)
		}
		seen[r.VariationValues.ItemNoDE] = true
		if r.SupplierItem.SupplierID != 3 || r.TItem.ParentID != 7 {
			t.Errorf("unexpected supplier or parent: %+v", r)
		}
	}
	if view.Records[0].TItem.ItemName != "Cable Blue-S" {
		t.Errorf("unexpected item name %q", view.Records[0].TItem.ItemName)
	}

	again, apiErr := f.svc.Synthesize(context.Background(), view.ID)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if len(again.Records) != 2 {
		t.Errorf("expected records to be merged by url, got %d", len(again.Records))
	}
}

func TestSynthesize_RequiresComparison(t *testing.T) {
	f := newFixture(t, Config{})
	view, _ := f.svc.Upload(context.Background(), "upload.csv", strings.NewReader(uploadCSV), "")

	_, apiErr := f.svc.Synthesize(context.Background(), view.ID)
	if apiErr == nil || apiErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", apiErr)
	}
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t, Config{ChunkSize: 100})
	view := f.synthesized(t)

	var events []ProgressEvent
	out, apiErr := f.svc.Submit(context.Background(), view.ID, func(e ProgressEvent) {
		events = append(events, e)
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if out.Outcome != submission.OutcomeSuccess || out.Succeeded != 2 {
		t.Errorf("unexpected output: %+v", out)
	}
	if StatusFor(out) != http.StatusOK {
		t.Errorf("expected 200, got %d", StatusFor(out))
	}
	if len(events) != 3 || events[0].Type != ProgressEventStart || events[2].Type != ProgressEventComplete {
		t.Errorf("unexpected progress events: %+v", events)
	}

	after, _ := f.svc.Get(context.Background(), view.ID)
	if len(after.Records) != 0 || after.Inserted != 2 {
		t.Errorf("expected inserted records to leave the session, got %d left and %d inserted", len(after.Records), after.Inserted)
	}
	if len(f.email.sent) != 0 {
		t.Errorf("expected no alert on success")
	}
}

func TestSubmit_ZeroWeightNeverReachesGateway(t *testing.T) {
	f := newFixture(t, Config{})
	view := f.synthesized(t)

	if _, apiErr := f.svc.ApplyDimensionOperations(context.Background(), view.ID, synthesis.DimensionOperations{Weight: "x * 0"}); apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	_, apiErr := f.svc.Submit(context.Background(), view.ID, nil)
	if apiErr == nil || apiErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", apiErr)
	}
	if len(apiErr.Causes) != 2 {
		t.Errorf("expected both urls reported, got %+v", apiErr.Causes)
	}
	if len(f.gateway.insertCalls) != 0 {
		t.Errorf("gateway must not be called, got %d calls", len(f.gateway.insertCalls))
	}
}

func TestSubmit_PartialKeepsFailedRecords(t *testing.T) {
	f := newFixture(t, Config{ChunkSize: 1})
	f.gateway.insertErr = func(call int) error {
		if call == 2 {
			return &pgconn.PgError{Code: "23505", ConstraintName: "titems_ean_key"}
		}
		return nil
	}
	view := f.synthesized(t)

	out, apiErr := f.svc.Submit(context.Background(), view.ID, nil)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if out.Outcome != submission.OutcomePartial || out.Succeeded != 1 || out.Failed != 1 {
		t.Errorf("unexpected output: %+v", out)
	}
	if StatusFor(out) != http.StatusMultiStatus {
		t.Errorf("expected 207, got %d", StatusFor(out))
	}
	if out.Failures[0].Key != "https://s.example/4" {
		t.Errorf("expected failure keyed by url, got %+v", out.Failures[0])
	}

	after, _ := f.svc.Get(context.Background(), view.ID)
	if len(after.Records) != 1 || after.Records[0].SupplierItem.URL != "https://s.example/4" {
		t.Errorf("expected the failed record to stay for retry, got %+v", after.Records)
	}
	if len(f.email.sent) != 1 {
		t.Errorf("expected 1 alert email, got %d", len(f.email.sent))
	}
}

func TestSubmit_TransportErrorAborts(t *testing.T) {
	f := newFixture(t, Config{ChunkSize: 1})
	f.gateway.insertErr = func(call int) error {
		if call == 2 {
			return fmt.Errorf("write batch: %w", context.DeadlineExceeded)
		}
		return nil
	}
	view := f.synthesized(t)

	out, apiErr := f.svc.Submit(context.Background(), view.ID, nil)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if out.Outcome != submission.OutcomeAborted || !out.Unavailable {
		t.Errorf("expected unavailable abort, got %+v", out)
	}
	if StatusFor(out) != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", StatusFor(out))
	}

	after, _ := f.svc.Get(context.Background(), view.ID)
	if after.Inserted != 1 || len(after.Records) != 1 {
		t.Errorf("expected 1 inserted and 1 pending, got %d and %d", after.Inserted, len(after.Records))
	}
}

func TestUpdateCommon_AppliesConfirmedUpdates(t *testing.T) {
	f := newFixture(t, Config{})
	view := f.synthesized(t)

	out, apiErr := f.svc.UpdateCommon(context.Background(), view.ID, UpdateCommonInput{})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if out.Outcome != submission.OutcomeSuccess || out.Total != 1 {
		t.Errorf("unexpected output: %+v", out)
	}
	if len(f.gateway.updates) != 1 || f.gateway.updates[0].ItemID != 102 || f.gateway.updates[0].URL != "https://s.example/2" {
		t.Errorf("unexpected updates: %+v", f.gateway.updates)
	}

	after, _ := f.svc.Get(context.Background(), view.ID)
	if !after.AllMatch {
		t.Error("expected every common row to match after the update")
	}
}

func TestUpdateCommon_UnavailableItemKeepsSettledSiblings(t *testing.T) {
	f := newFixture(t, Config{ChunkSize: 100})
	ctx := context.Background()

	sess := &Session{ID: "s5", Result: &reconcile.Result{}}
	for i := 1; i <= 5; i++ {
		db := reconcile.MasterRow{ItemID: i, EAN: fmt.Sprintf("ean-%d", i), URL: fmt.Sprintf("https://old.example/%d", i), PriceRMB: "10"}
		sess.Master = append(sess.Master, db)
		sess.Result.Common = append(sess.Result.Common, reconcile.Pair{
			DB:  db,
			CSV: normalizer.Row{URL: fmt.Sprintf("https://new.example/%d", i), Price: "10"},
		})
	}
	if err := f.store.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}
	f.gateway.updateErr = func(u reconcile.SupplierUpdate) error {
		if u.ItemID == 3 {
			return &pgconn.PgError{Code: "08006"}
		}
		return nil
	}

	out, apiErr := f.svc.UpdateCommon(ctx, "s5", UpdateCommonInput{})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if len(f.gateway.updates) != 4 {
		t.Fatalf("expected 4 written updates, got %d", len(f.gateway.updates))
	}
	if out.Outcome != submission.OutcomeAborted || !out.Unavailable {
		t.Errorf("expected an aborted unavailable outcome, got %+v", out)
	}
	if out.Succeeded != 4 || out.Failed != 1 {
		t.Fatalf("succeeded=%d failed=%d, want 4 and 1", out.Succeeded, out.Failed)
	}
	if len(out.Failures) != 1 || out.Failures[0].Key != "ean-3" {
		t.Errorf("unexpected failures: %+v", out.Failures)
	}

	after, _ := f.store.Get(ctx, "s5")
	for _, p := range after.Result.Common {
		updated := p.DB.URL == p.CSV.URL
		if updated == (p.DB.ItemID == 3) {
			t.Errorf("item %d: url %q after update", p.DB.ItemID, p.DB.URL)
		}
	}
	for _, m := range after.Master {
		if m.ItemID != 3 && m.URL != fmt.Sprintf("https://new.example/%d", m.ItemID) {
			t.Errorf("master row %d not refreshed: %q", m.ItemID, m.URL)
		}
	}

	// only the failed item is left to retry
	f.gateway.updateErr = nil
	f.gateway.updates = nil
	out, apiErr = f.svc.UpdateCommon(ctx, "s5", UpdateCommonInput{})
	if apiErr != nil {
		t.Fatalf("unexpected error on retry: %v", apiErr)
	}
	if out.Outcome != submission.OutcomeSuccess || len(f.gateway.updates) != 1 || f.gateway.updates[0].ItemID != 3 {
		t.Errorf("expected a single retried update for item 3, got %+v", f.gateway.updates)
	}
}

func TestSetRules_UnknownColumn(t *testing.T) {
	f := newFixture(t, Config{})
	view, _ := f.svc.Upload(context.Background(), "upload.csv", strings.NewReader(uploadCSV), "")

	_, apiErr := f.svc.SetRules(context.Background(), view.ID, rules.RuleSet{"length": {Prefix: "L"}})
	if apiErr == nil || apiErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", apiErr)
	}
}

func TestSetRules_RecomputesFromOriginal(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	view, _ := f.svc.Upload(ctx, "upload.csv", strings.NewReader(uploadCSV), "")

	for i := 0; i < 2; i++ {
		var apiErr *rest.ApiErr
		view, apiErr = f.svc.SetRules(ctx, view.ID, rules.RuleSet{"price": {Formula: "x * rate"}})
		if apiErr != nil {
			t.Fatalf("unexpected error: %v", apiErr)
		}
	}
	if view.Rows[0].Price != "70" {
		t.Errorf("expected price 70 after applying the rule twice, got %q", view.Rows[0].Price)
	}
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t, Config{})

	_, apiErr := f.svc.Get(context.Background(), "missing")
	if apiErr == nil || apiErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", apiErr)
	}
}

func TestUpload_UnsupportedFormat(t *testing.T) {
	f := newFixture(t, Config{})

	_, apiErr := f.svc.Upload(context.Background(), "upload.pdf", strings.NewReader("x"), "")
	if apiErr == nil || apiErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", apiErr)
	}
}

func TestCleanValue(t *testing.T) {
	tests := map[string]string{
		"Ø10mm":  "10mm",
		" Ø ":    noAttr,
		"":       noAttr,
		"Yellow": "Yellow",
	}
	for in, want := range tests {
		if got := CleanValue(in); got != want {
			t.Errorf("CleanValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusFor_Aborted(t *testing.T) {
	out := &SubmitOutput{Outcome: submission.OutcomeAborted}
	if got := StatusFor(out); got != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", got)
	}
}
