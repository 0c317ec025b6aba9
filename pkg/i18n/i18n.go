package i18n

import (
	"encoding/json"
	"sync"

	"github.com/juju/errors"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init builds the bundle with the built-in English and Indonesian messages.
// Extra locale files can be layered on top with Load.
func Init() {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	_ = b.AddMessages(language.English, english...)
	_ = b.AddMessages(language.Indonesian, indonesian...)

	mu.Lock()
	bundle = b
	mu.Unlock()
}

// Load adds messages from a JSON locale file such as active.en.json.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		return errNotInitialized
	}
	_, err := bundle.LoadMessageFile(path)
	return err
}

const errNotInitialized = errors.ConstError("i18n: Init not called")

// T renders messageID for the languages in acceptLanguage (an Accept-Language
// header value). Unknown IDs come back unchanged.
func T(acceptLanguage, messageID string, data map[string]interface{}) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		return messageID
	}

	loc := goi18n.NewLocalizer(b, acceptLanguage)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

var english = []*goi18n.Message{
	{ID: "invalid_input", Other: "The request contains invalid fields"},
	{ID: "unauthorized", Other: "Please sign in to continue"},
	{ID: "forbidden", Other: "You do not have access to this action"},
	{ID: "internal_error", Other: "Something went wrong, please try again"},
	{ID: "product_not_found", Other: "Product not found"},
	{ID: "product_exists", Other: "A product with this stock code already exists"},
	{ID: "stock_code_required", Other: "Stock code is required"},
	{ID: "name_required", Other: "Name is required"},
	{ID: "quantity_nonzero", Other: "Quantity change must be a non-zero whole number"},
	{ID: "quantity_not_integer", Other: "Quantity must be a whole number"},
	{ID: "quantity_sign_invalid", Other: "Quantity sign does not match the movement type"},
	{ID: "movement_type_invalid", Other: "Unknown movement type"},
	{ID: "min_stock_negative", Other: "Minimum stock level cannot be negative"},
	{ID: "initial_quantity_negative", Other: "Initial quantity cannot be negative"},
	{ID: "stock_negative", Other: "Stock cannot go negative (would be {{.Result}})"},
	{ID: "movement_not_recorded", Other: "Stock was updated but the movement record may be missing"},
	{ID: "alert_reconciliation_failed", Other: "Stock was updated but low-stock alerts could not be refreshed"},
	{ID: "initial_stock_not_applied", Other: "Product was created but its initial stock was not applied"},
	{ID: "busy", Other: "This product is being updated, please try again"},
}

var indonesian = []*goi18n.Message{
	{ID: "invalid_input", Other: "Permintaan berisi data yang tidak valid"},
	{ID: "unauthorized", Other: "Silakan masuk untuk melanjutkan"},
	{ID: "forbidden", Other: "Anda tidak memiliki akses untuk tindakan ini"},
	{ID: "internal_error", Other: "Terjadi kesalahan, silakan coba lagi"},
	{ID: "product_not_found", Other: "Produk tidak ditemukan"},
	{ID: "product_exists", Other: "Produk dengan kode stok ini sudah ada"},
	{ID: "stock_code_required", Other: "Kode stok wajib diisi"},
	{ID: "name_required", Other: "Nama wajib diisi"},
	{ID: "quantity_nonzero", Other: "Perubahan jumlah harus bilangan bulat bukan nol"},
	{ID: "quantity_not_integer", Other: "Jumlah harus bilangan bulat"},
	{ID: "quantity_sign_invalid", Other: "Tanda jumlah tidak sesuai dengan jenis pergerakan"},
	{ID: "movement_type_invalid", Other: "Jenis pergerakan tidak dikenal"},
	{ID: "min_stock_negative", Other: "Stok minimum tidak boleh negatif"},
	{ID: "initial_quantity_negative", Other: "Jumlah awal tidak boleh negatif"},
	{ID: "stock_negative", Other: "Stok tidak boleh negatif (menjadi {{.Result}})"},
	{ID: "movement_not_recorded", Other: "Stok diperbarui tetapi catatan pergerakan mungkin hilang"},
	{ID: "alert_reconciliation_failed", Other: "Stok diperbarui tetapi peringatan stok rendah gagal diperbarui"},
	{ID: "initial_stock_not_applied", Other: "Produk dibuat tetapi stok awal tidak diterapkan"},
	{ID: "busy", Other: "Produk sedang diperbarui, silakan coba lagi"},
}
