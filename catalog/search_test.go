package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(code, name string) Product {
	return Product{ID: uuid.New(), Code: code, Name: name}
}

func codes(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Code)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		kind  PlanKind
		term  string
		words []string
	}{
		{"empty", Query{Text: "   "}, PlanAll, "", nil},
		{"empty exact", Query{Text: "", Exact: true}, PlanAll, "", nil},
		{"exact keeps case", Query{Text: " AB12 ", Exact: true}, PlanExactCode, "AB12", nil},
		{"long numeric", Query{Text: "4521"}, PlanCodePrefix, "4521", nil},
		{"short numeric", Query{Text: "452"}, PlanWords, "", []string{"452"}},
		{"numeric with space", Query{Text: "45 21"}, PlanWords, "", []string{"45", "21"}},
		{"words lowercased", Query{Text: "Red   HAMMER"}, PlanWords, "", []string{"red", "hammer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Classify(tt.query)
			assert.Equal(t, tt.kind, plan.Kind)
			assert.Equal(t, tt.term, plan.Term)
			assert.Equal(t, tt.words, plan.Words)
		})
	}
}

func TestSearchNumericPrefixProbe(t *testing.T) {
	snap := NewSnapshot([]Product{
		product("4521", "Tornillo A"),
		product("45210", "Tornillo B"),
		product("14521", "Tornillo C"),
		product("452", "Tornillo D"),
	}, "es")

	assert.ElementsMatch(t, []string{"4521", "45210"}, codes(Search(snap, Query{Text: "4521"})))
}

func TestSearchShortNumericIsText(t *testing.T) {
	snap := NewSnapshot([]Product{
		product("4521", "Tornillo"),
		product("9999", "Caja 452 piezas"),
		product("1234", "Clavo"),
	}, "es")

	assert.ElementsMatch(t, []string{"4521", "9999"}, codes(Search(snap, Query{Text: "452"})))
}

func TestSearchMultiWordAnd(t *testing.T) {
	snap := NewSnapshot([]Product{
		product("1001", "Red Claw Hammer"),
		product("1002", "Red Screwdriver"),
		product("1003", "Blue Hammer"),
	}, "es")

	got := Search(snap, Query{Text: "red hammer"})
	require.Len(t, got, 1)
	assert.Equal(t, "Red Claw Hammer", got[0].Name)
}

func TestSearchWordMayMatchCode(t *testing.T) {
	snap := NewSnapshot([]Product{
		product("AX-77", "Llave inglesa"),
		product("BX-10", "Llave fija"),
	}, "es")

	assert.Equal(t, []string{"AX-77"}, codes(Search(snap, Query{Text: "llave ax"})))
}

func TestSearchExactMatch(t *testing.T) {
	snap := NewSnapshot([]Product{
		product("4521", "A"),
		product("45210", "B"),
		product("14521", "C"),
	}, "es")

	code, err := NormalizeScannedCode("0004521")
	require.NoError(t, err)

	assert.Equal(t, []string{"4521"}, codes(Search(snap, Query{Text: code, Exact: true})))
}

func TestSearchEmptyQueryReturnsFirstFifty(t *testing.T) {
	products := make([]Product, 0, 120)
	for i := 119; i >= 0; i-- {
		products = append(products, product(fmt.Sprintf("C%03d", i), fmt.Sprintf("producto %03d", i)))
	}
	snap := NewSnapshot(products, "es")

	got := Search(snap, Query{})
	require.Len(t, got, MaxResults)
	for i, p := range got {
		assert.Equal(t, fmt.Sprintf("producto %03d", i), p.Name)
	}
}

func TestSearchCapsResults(t *testing.T) {
	products := make([]Product, 0, 80)
	for i := 0; i < 80; i++ {
		products = append(products, product(fmt.Sprintf("%d", 10000+i), "martillo"))
	}
	snap := NewSnapshot(products, "es")

	assert.Len(t, Search(snap, Query{Text: "martillo"}), MaxResults)
	assert.Len(t, Search(snap, Query{Text: "1000"}), 10)
}

func TestSearchNilSnapshot(t *testing.T) {
	assert.Empty(t, Search(nil, Query{Text: "martillo"}))
	assert.Empty(t, Search(nil, Query{}))
}
