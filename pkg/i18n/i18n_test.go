package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	Init()

	assert.Equal(t, "Product not found", T("en-US", "product_not_found", nil))
	assert.Equal(t, "Produk tidak ditemukan", T("id-ID,id;q=0.9", "product_not_found", nil))
	// Unsupported languages fall back to English.
	assert.Equal(t, "Product not found", T("fr", "product_not_found", nil))
	assert.Equal(t, "Product not found", T("", "product_not_found", nil))
}

func TestTranslateTemplateData(t *testing.T) {
	Init()

	got := T("en", "stock_negative", map[string]interface{}{"Result": -4})
	assert.Equal(t, "Stock cannot go negative (would be -4)", got)
}

func TestUnknownIDPassesThrough(t *testing.T) {
	Init()

	assert.Equal(t, "no_such_message", T("en", "no_such_message", nil))
}
