// Package i18n holds the two static string dictionaries shown to customers and staff.
package i18n

import "qr-menu/internal/model"

// Key names a translatable message.
type Key string

const (
	KeyWelcome           Key = "welcome"
	KeySelectTable       Key = "select_table"
	KeySettingUp         Key = "setting_up"
	KeyTable             Key = "table"
	KeyCartEmpty         Key = "cart_empty"
	KeyMyCart            Key = "my_cart"
	KeyItems             Key = "items"
	KeySubtotal          Key = "subtotal"
	KeyVAT               Key = "vat"
	KeyVATIncluded       Key = "vat_included"
	KeyTotal             Key = "total"
	KeyPlaceOrder        Key = "place_order"
	KeyProcessing        Key = "processing"
	KeyNotifyWhenReady   Key = "notify_when_ready"
	KeyOrderFailed       Key = "order_failed"
	KeyStepReceived      Key = "step_received"
	KeyStepReceivedDesc  Key = "step_received_desc"
	KeyStepPreparing     Key = "step_preparing"
	KeyStepPreparingDesc Key = "step_preparing_desc"
	KeyStepServed        Key = "step_served"
	KeyStepServedDesc    Key = "step_served_desc"
	KeyOrderSummary      Key = "order_summary"
	KeyEstimatedTime     Key = "estimated_time"
	KeyMinutes           Key = "minutes"
	KeyAdminLogin        Key = "admin_login"
	KeyInvalidLogin      Key = "invalid_login"
	KeyStatusUpdated     Key = "status_updated"
	KeyStatusUpdateError Key = "status_update_error"
	KeyCatalogOffline    Key = "catalog_offline"
	KeyNoResults         Key = "no_results"
)

var dictionaries = map[string]map[Key]string{
	"tr": {
		KeyWelcome:           "Hoş Geldiniz!",
		KeySelectTable:       "Lütfen masanızı seçin",
		KeySettingUp:         "Ayarlanıyor...",
		KeyTable:             "Masa",
		KeyCartEmpty:         "Sepetiniz Boş",
		KeyMyCart:            "Sepetim",
		KeyItems:             "ürün",
		KeySubtotal:          "Ara Toplam",
		KeyVAT:               "KDV",
		KeyVATIncluded:       "Dahil",
		KeyTotal:             "Toplam",
		KeyPlaceOrder:        "Sipariş Ver",
		KeyProcessing:        "İşleniyor...",
		KeyNotifyWhenReady:   "Siparişiniz hazırlandığında bilgilendirileceksiniz.",
		KeyOrderFailed:       "Sipariş gönderilemedi, lütfen tekrar deneyin.",
		KeyStepReceived:      "Sipariş Alındı",
		KeyStepReceivedDesc:  "Siparişiniz mutfağımıza iletildi.",
		KeyStepPreparing:     "Hazırlanıyor",
		KeyStepPreparingDesc: "Şeflerimiz siparişinizi özenle hazırlıyor.",
		KeyStepServed:        "Servis Edildi",
		KeyStepServedDesc:    "Afiyet olsun! Siparişiniz masanıza getirildi.",
		KeyOrderSummary:      "Sipariş Özeti",
		KeyEstimatedTime:     "Tahmini süre:",
		KeyMinutes:           "dakika",
		KeyAdminLogin:        "Admin Girişi",
		KeyInvalidLogin:      "Hatalı kullanıcı adı veya şifre!",
		KeyStatusUpdated:     "Sipariş durumu güncellendi",
		KeyStatusUpdateError: "Bir hata oluştu",
		KeyCatalogOffline:    "Menü şu anda çevrimdışı gösteriliyor.",
		KeyNoResults:         "Sonuç bulunamadı",
	},
	"en": {
		KeyWelcome:           "Welcome!",
		KeySelectTable:       "Please select your table",
		KeySettingUp:         "Setting up...",
		KeyTable:             "Table",
		KeyCartEmpty:         "Your Cart is Empty",
		KeyMyCart:            "My Cart",
		KeyItems:             "items",
		KeySubtotal:          "Subtotal",
		KeyVAT:               "VAT",
		KeyVATIncluded:       "Included",
		KeyTotal:             "Total",
		KeyPlaceOrder:        "Place Order",
		KeyProcessing:        "Processing...",
		KeyNotifyWhenReady:   "You'll be notified when your order is ready.",
		KeyOrderFailed:       "Your order could not be sent, please try again.",
		KeyStepReceived:      "Order Received",
		KeyStepReceivedDesc:  "Your order has been sent to our kitchen.",
		KeyStepPreparing:     "Preparing",
		KeyStepPreparingDesc: "Our chefs are carefully preparing your order.",
		KeyStepServed:        "Served",
		KeyStepServedDesc:    "Enjoy! Your order has been served to your table.",
		KeyOrderSummary:      "Order Summary",
		KeyEstimatedTime:     "Estimated time:",
		KeyMinutes:           "minutes",
		KeyAdminLogin:        "Admin Login",
		KeyInvalidLogin:      "Invalid username or password!",
		KeyStatusUpdated:     "Order status updated",
		KeyStatusUpdateError: "Something went wrong",
		KeyCatalogOffline:    "The menu is currently shown offline.",
		KeyNoResults:         "No results found",
	},
}

var statusLabels = map[string]map[model.OrderStatus]string{
	"tr": {
		model.OrderStatusPending:   "Beklemede",
		model.OrderStatusPreparing: "Hazırlanıyor",
		model.OrderStatusPrepared:  "Hazır",
		model.OrderStatusServed:    "Servis Edildi",
	},
	"en": {
		model.OrderStatusPending:   "Pending",
		model.OrderStatusPreparing: "Preparing",
		model.OrderStatusPrepared:  "Ready",
		model.OrderStatusServed:    "Served",
	},
}

// T looks up key in the dictionary for lang. Unknown languages use Turkish;
// unknown keys come back as the key itself.
func T(lang string, key Key) string {
	dict, ok := dictionaries[lang]
	if !ok {
		dict = dictionaries["tr"]
	}
	if s, ok := dict[key]; ok {
		return s
	}
	return string(key)
}

// StatusLabel returns the staff-facing label of an order status.
func StatusLabel(lang string, status model.OrderStatus) string {
	labels, ok := statusLabels[lang]
	if !ok {
		labels = statusLabels["tr"]
	}
	if s, ok := labels[status]; ok {
		return s
	}
	return string(status)
}
