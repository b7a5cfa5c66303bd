package catalog

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/freitasmatheusrn/supplier-sync/internal/database/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

func TestProcessLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keeps id only", "https://shop.example.com/item.htm?spm=a1z&id=123&ns=1", "https://shop.example.com/item.htm?id=123"},
		{"drops query without id", "https://shop.example.com/item.htm?spm=a1z", "https://shop.example.com/item.htm"},
		{"drops fragment", "https://shop.example.com/item.htm?id=9#reviews", "https://shop.example.com/item.htm?id=9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessLink(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ProcessLink(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ProcessLink("not a url"); !errors.Is(err, ErrInvalidLink) {
		t.Errorf("expected ErrInvalidLink, got %v", err)
	}
}

func TestMergeCombinations(t *testing.T) {
	current := []Combination{
		{Attribute1: "Red", Price: "10"},
		{Attribute1: "Blue", Price: "10"},
	}
	fresh := []Combination{
		{Attribute1: "Red", Price: "10"},
		{Attribute1: "Red", Price: "12"},
		{Attribute1: "Red", Attribute2: "XL", Price: "10"},
		{Attribute1: "Red", Price: "12"},
	}

	merged, added := MergeCombinations(current, fresh)
	if added != 2 {
		t.Errorf("expected 2 added, got %d", added)
	}
	if len(merged) != 4 {
		t.Fatalf("expected 4 combinations, got %d", len(merged))
	}
	if err := ValidateCombinations(merged); err != nil {
		t.Errorf("merged combinations should be valid: %v", err)
	}
}

func TestValidateCombinations(t *testing.T) {
	if err := ValidateCombinations([]Combination{{Attribute1: "A"}}); !errors.Is(err, ErrMissingPrice) {
		t.Errorf("expected ErrMissingPrice, got %v", err)
	}
	dup := []Combination{{Attribute1: "A", Price: "1"}, {Attribute1: "A", Price: "1"}}
	if err := ValidateCombinations(dup); !errors.Is(err, ErrDuplicateCombo) {
		t.Errorf("expected ErrDuplicateCombo, got %v", err)
	}
}

func TestToRows(t *testing.T) {
	products := []Product{
		{Link: "https://a.example/p?id=1", Combinations: []Combination{
			{Attribute1: "Red", Attribute2: "S", Price: "10"},
			{Attribute1: "Blue", Price: "11"},
		}},
		{Link: "https://a.example/p?id=2", Combinations: []Combination{
			{Attribute1: "Green", Price: "12"},
		}},
	}

	rows := ToRows(products)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2].No != "3" || rows[2].URL != "https://a.example/p?id=2" || rows[2].Attributes[0] != "Green" {
		t.Errorf("unexpected last row: %+v", rows[2])
	}
	if rows[0].Attributes[1] != "S" || rows[0].Price != "10" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Weight != "0" {
		t.Errorf("expected default weight 0, got %q", rows[1].Weight)
	}
}

type MockRepository struct {
	mu      sync.Mutex
	byLink  map[string]postgres.CatalogProduct
	updates int
}

func (m *MockRepository) CreateCatalogProduct(ctx context.Context, arg postgres.CreateCatalogProductParams) (postgres.CatalogProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := postgres.CatalogProduct{
		ID:           pgtype.UUID{Bytes: [16]byte{byte(len(m.byLink) + 1)}, Valid: true},
		Title:        arg.Title,
		Link:         arg.Link,
		Combinations: arg.Combinations,
	}
	m.byLink[arg.Link] = p
	return p, nil
}

func (m *MockRepository) FindCatalogProductByLink(ctx context.Context, link string) (postgres.CatalogProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byLink[link]
	if !ok {
		return postgres.CatalogProduct{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *MockRepository) FindCatalogProductByID(ctx context.Context, id pgtype.UUID) (postgres.CatalogProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byLink {
		if p.ID == id {
			return p, nil
		}
	}
	return postgres.CatalogProduct{}, pgx.ErrNoRows
}

func (m *MockRepository) UpdateCatalogCombinations(ctx context.Context, id pgtype.UUID, combinations []byte) (postgres.CatalogProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for link, p := range m.byLink {
		if p.ID == id {
			p.Combinations = combinations
			m.byLink[link] = p
			m.updates++
			return p, nil
		}
	}
	return postgres.CatalogProduct{}, pgx.ErrNoRows
}

func (m *MockRepository) ListCatalogProducts(ctx context.Context) ([]postgres.CatalogProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []postgres.CatalogProduct
	for _, p := range m.byLink {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockRepository) ListCatalogProductsBySubClass(ctx context.Context, subClassID pgtype.UUID) ([]postgres.CatalogProduct, error) {
	return nil, nil
}

func TestAddProduct_MergesByNormalizedLink(t *testing.T) {
	repo := &MockRepository{byLink: map[string]postgres.CatalogProduct{}}
	s := NewService(repo, zap.NewNop())
	ctx := context.Background()

	first, apiErr := s.AddProduct(ctx, AddProductInput{
		Title:        "Cable",
		Link:         "https://shop.example.com/item.htm?id=7&spm=x",
		Combinations: []Combination{{Attribute1: "1m", Price: "5"}},
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if !first.Created || first.Added != 1 {
		t.Errorf("expected created product with 1 combination, got %+v", first)
	}

	second, apiErr := s.AddProduct(ctx, AddProductInput{
		Title:        "Cable",
		Link:         "https://shop.example.com/item.htm?id=7&spm=y",
		Combinations: []Combination{{Attribute1: "1m", Price: "5"}, {Attribute1: "2m", Price: "8"}},
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if second.Created {
		t.Error("expected existing product to be reused")
	}
	if second.Added != 1 || len(second.Product.Combinations) != 2 {
		t.Errorf("expected 1 new combination and 2 total, got %+v", second)
	}

	third, apiErr := s.AddProduct(ctx, AddProductInput{
		Title:        "Cable",
		Link:         "https://shop.example.com/item.htm?id=7",
		Combinations: []Combination{{Attribute1: "2m", Price: "8"}},
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if third.Added != 0 || repo.updates != 1 {
		t.Errorf("expected no write for known combinations, added=%d updates=%d", third.Added, repo.updates)
	}
}

func TestAddProduct_RequiresPrice(t *testing.T) {
	s := NewService(&MockRepository{byLink: map[string]postgres.CatalogProduct{}}, zap.NewNop())

	_, apiErr := s.AddProduct(context.Background(), AddProductInput{
		Title:        "Cable",
		Link:         "https://shop.example.com/item.htm?id=7",
		Combinations: []Combination{{Attribute1: "1m"}},
	})
	if apiErr == nil || apiErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", apiErr)
	}
}
