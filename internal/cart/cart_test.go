package cart

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/easyphone/internal/domain"
)

func sampleProduct() *domain.Product {
	p := &domain.Product{
		ID:       uuid.New(),
		Title:    "iPhone 12",
		Brand:    "Apple",
		Category: "celulares",
		Images:   []domain.Image{{ID: uuid.New(), URL: "/img/iphone12.jpg"}},
	}
	p.Variants = []domain.Variant{
		{ID: uuid.New(), ProductID: p.ID, Name: "64GB Preto", Stock: 2, Price: 100, Promotional: 80},
		{ID: uuid.New(), ProductID: p.ID, Name: "128GB Branco", Stock: 5, Price: 120},
	}
	return p
}

func TestAddUsesPromotionalPriceAndClampsToStock(t *testing.T) {
	p := sampleProduct()
	v := &p.Variants[0] // price 100, promo 80, stock 2

	c := New()
	c.Add(p, v, 1)

	line, ok := c.Find(p.ID, v.ID)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 80.0, line.UnitPrice)
	assert.Equal(t, 80.0, c.Total())

	c.Add(p, v, 1)
	line, _ = c.Find(p.ID, v.ID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 160.0, c.Total())

	// tercera vez: el stock es 2, la cantidad no pasa de ahí
	c.Add(p, v, 1)
	line, _ = c.Find(p.ID, v.ID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 160.0, c.Total())
	assert.Equal(t, 1, c.Len())
}

func TestAddNeverDuplicatesLines(t *testing.T) {
	p := sampleProduct()
	v := &p.Variants[1] // stock 5

	c := New()
	for i := 0; i < 3; i++ {
		c.Add(p, v, 1)
	}
	assert.Equal(t, 1, c.Len())
	line, _ := c.Find(p.ID, v.ID)
	assert.Equal(t, 3, line.Quantity)
}

func TestAddDistinctVariantsKeepSeparateLines(t *testing.T) {
	p := sampleProduct()

	c := New()
	c.Add(p, &p.Variants[0], 1)
	c.Add(p, &p.Variants[1], 2)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 80.0+2*120.0, c.Total())
}

func TestAddOutOfStockCreatesNothing(t *testing.T) {
	p := sampleProduct()
	p.Variants[0].Stock = 0

	c := New()
	c.Add(p, &p.Variants[0], 1)
	assert.True(t, c.Empty())
}

func TestSetQuantity(t *testing.T) {
	p := sampleProduct()
	v := &p.Variants[1] // stock 5

	c := New()
	c.Add(p, v, 2)

	c.SetQuantity(p.ID, v.ID, 4)
	line, _ := c.Find(p.ID, v.ID)
	assert.Equal(t, 4, line.Quantity)

	// por encima del stock conocido se acota
	c.SetQuantity(p.ID, v.ID, 99)
	line, _ = c.Find(p.ID, v.ID)
	assert.Equal(t, 5, line.Quantity)

	// cero equivale a remover
	c.SetQuantity(p.ID, v.ID, 0)
	_, ok := c.Find(p.ID, v.ID)
	assert.False(t, ok)
	assert.True(t, c.Empty())
}

func TestRemoveMissingLineIsNoop(t *testing.T) {
	c := New()
	c.Remove(uuid.New(), uuid.New())
	assert.True(t, c.Empty())
}

func TestTotalIndependentOfMutationOrder(t *testing.T) {
	p := sampleProduct()

	a := New()
	a.Add(p, &p.Variants[0], 1)
	a.Add(p, &p.Variants[1], 3)
	a.SetQuantity(p.ID, p.Variants[1].ID, 2)

	b := New()
	b.Add(p, &p.Variants[1], 2)
	b.Add(p, &p.Variants[0], 2)
	b.SetQuantity(p.ID, p.Variants[0].ID, 1)

	assert.Equal(t, a.Total(), b.Total())
}

func TestCookieRoundTrip(t *testing.T) {
	p := sampleProduct()
	key := []byte("test-key")
	lookup := func(id uuid.UUID) (*domain.Product, error) {
		if id == p.ID {
			return p, nil
		}
		return nil, domain.ErrNotFound
	}

	c := New()
	c.Add(p, &p.Variants[0], 1)
	c.Add(p, &p.Variants[1], 2)

	rec := httptest.NewRecorder()
	WriteCookie(rec, key, c)
	req := httptest.NewRequest("GET", "/api/cart", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}

	got := ReadCookie(req, key, lookup)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, c.Total(), got.Total())

	line, ok := got.Find(p.ID, p.Variants[0].ID)
	require.True(t, ok)
	assert.Equal(t, 80.0, line.UnitPrice)
}

func TestCookieRehydrationDropsRemovedProducts(t *testing.T) {
	p := sampleProduct()
	key := []byte("test-key")

	c := New()
	c.Add(p, &p.Variants[0], 1)
	rec := httptest.NewRecorder()
	WriteCookie(rec, key, c)
	req := httptest.NewRequest("GET", "/api/cart", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}

	got := ReadCookie(req, key, func(uuid.UUID) (*domain.Product, error) { return nil, domain.ErrNotFound })
	assert.True(t, got.Empty())
}

func TestCookieRehydrationClampsToCurrentStock(t *testing.T) {
	p := sampleProduct()
	key := []byte("test-key")

	c := New()
	c.Add(p, &p.Variants[1], 4)
	rec := httptest.NewRecorder()
	WriteCookie(rec, key, c)
	req := httptest.NewRequest("GET", "/api/cart", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}

	// el stock bajó entre la escritura del espejo y la recarga
	p.Variants[1].Stock = 1
	got := ReadCookie(req, key, func(uuid.UUID) (*domain.Product, error) { return p, nil })
	line, ok := got.Find(p.ID, p.Variants[1].ID)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	p := sampleProduct()
	key := []byte("test-key")

	c := New()
	c.Add(p, &p.Variants[0], 1)
	rec := httptest.NewRecorder()
	WriteCookie(rec, key, c)
	req := httptest.NewRequest("GET", "/api/cart", nil)
	for _, ck := range rec.Result().Cookies() {
		ck.Value = "x" + ck.Value
		req.AddCookie(ck)
	}

	got := ReadCookie(req, key, func(uuid.UUID) (*domain.Product, error) { return p, nil })
	assert.True(t, got.Empty())
}
