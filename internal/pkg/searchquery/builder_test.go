package searchquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

func TestBuilder_Unfiltered(t *testing.T) {
	q, ok := New().Build()
	assert.False(t, ok)
	assert.Empty(t, q)

	assert.Nil(t, Build(&domain.FilterParams{CollectionHandle: "shirts"}))
}

func TestBuilder_BlankValuesContributeNothing(t *testing.T) {
	p := &domain.FilterParams{Vendor: "  ", Tag: "", Type: "\t"}
	assert.Nil(t, Build(p))
}

func TestBuilder_SingleField(t *testing.T) {
	q, ok := New().Where(Field(FieldVendor, "Acme")).Build()
	require.True(t, ok)
	assert.Equal(t, "vendor:Acme", q)
}

func TestBuilder_AllTermsInOrder(t *testing.T) {
	minP, maxP := 10.0, 20.5
	p := &domain.FilterParams{
		CollectionHandle: "shirts",
		Vendor:           "Acme",
		Type:             "Shirt",
		Tag:              "summer",
		Color:            "Blue",
		Size:             "M",
		MinPrice:         &minP,
		MaxPrice:         &maxP,
	}

	q := Build(p)

	require.NotNil(t, q)
	assert.Equal(t, "vendor:Acme product_type:Shirt tag:summer price:>=10 price:<=20.5", *q)
}

func TestBuilder_ColorAndSizeNeverBecomeTerms(t *testing.T) {
	p := &domain.FilterParams{Color: "Blue", Size: "M"}
	assert.Nil(t, Build(p))
}

func TestBuilder_QuotesAmbiguousValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"space", "Acme Co", `vendor:"Acme Co"`},
		{"colon", "a:b", `vendor:"a:b"`},
		{"quote", `5" Ruler`, `vendor:"5\" Ruler"`},
		{"trimmed", "  Acme  ", `vendor:Acme`},
		{"plain", "Acme-Co", `vendor:Acme-Co`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := New().Where(Field(FieldVendor, tt.value)).Build()
			require.True(t, ok)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestBuilder_PriceDroppedWhenUnparsable(t *testing.T) {
	p := &domain.FilterParams{
		MinPrice: domain.ParsePrice("abc"),
		MaxPrice: domain.ParsePrice("20"),
	}
	q := Build(p)
	require.NotNil(t, q)
	assert.Equal(t, "price:<=20", *q)

	omitted := Build(&domain.FilterParams{MaxPrice: domain.ParsePrice("20")})
	assert.Equal(t, *omitted, *q)
}

func TestBuilder_Immutability(t *testing.T) {
	base := New().Where(Field(FieldVendor, "Acme"))
	withTag := base.Where(Field(FieldTag, "summer"))

	q1, _ := base.Build()
	q2, _ := withTag.Build()

	assert.Equal(t, "vendor:Acme", q1)
	assert.Equal(t, "vendor:Acme tag:summer", q2)
}

func TestBuilder_String(t *testing.T) {
	assert.Equal(t, "<unfiltered>", New().String())
	assert.Equal(t, "tag:x", New().Where(Field(FieldTag, "x")).String())
}

func TestEscape_RoundTrip(t *testing.T) {
	values := []string{
		"Acme Co",
		"a:b",
		"key: value",
		`say "hi"`,
		`back\slash and space`,
		`trailing\`,
		`"`,
		"multi  space",
		"Ünïcödé Brand",
	}

	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			q, ok := New().
				Where(Field(FieldVendor, v)).
				Where(Field(FieldTag, "after")).
				Build()
			require.True(t, ok)

			terms, err := Tokenize(q)
			require.NoError(t, err)
			require.Len(t, terms, 2)
			assert.Equal(t, Term{Field: FieldVendor, Value: v}, terms[0])
			assert.Equal(t, Term{Field: FieldTag, Value: "after"}, terms[1])
		})
	}
}

func TestTokenize(t *testing.T) {
	terms, err := Tokenize(`vendor:"Acme Co" price:>=10 tag:x`)
	require.NoError(t, err)
	assert.Equal(t, []Term{
		{Field: "vendor", Value: "Acme Co"},
		{Field: "price", Value: ">=10"},
		{Field: "tag", Value: "x"},
	}, terms)

	empty, err := Tokenize("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTokenize_Malformed(t *testing.T) {
	for _, q := range []string{
		`novalue`,
		`:x`,
		`vendor:"open`,
		`vendor:"a"b`,
	} {
		_, err := Tokenize(q)
		assert.ErrorIs(t, err, ErrMalformedQuery, q)
	}
}
