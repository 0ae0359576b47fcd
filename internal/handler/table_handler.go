package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

// Table describes one table and the link printed on its QR code.
type Table struct {
	Number    int    `json:"number"`
	MenuURL   string `json:"menuUrl"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// TableHandler serves the per-table QR codes customers scan to open the menu.
type TableHandler struct {
	publicURL  string
	tableCount int
	logger     zerolog.Logger
}

// NewTableHandler creates a table handler for tables 1..tableCount whose
// codes point at the ordering service at publicURL.
func NewTableHandler(publicURL string, tableCount int, logger zerolog.Logger) *TableHandler {
	return &TableHandler{
		publicURL:  strings.TrimRight(publicURL, "/"),
		tableCount: tableCount,
		logger:     logger.With().Str("handler", "table").Logger(),
	}
}

// MenuURL returns the link that opens the menu bound to table n.
func (h *TableHandler) MenuURL(n int) string {
	return fmt.Sprintf("%s/menu?table=%d", h.publicURL, n)
}

// List handles GET /api/tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables := make([]Table, h.tableCount)
	for i := range tables {
		n := i + 1
		tables[i] = Table{
			Number:    n,
			MenuURL:   h.MenuURL(n),
			QRCodeURL: fmt.Sprintf("/api/tables/%d/qrcode", n),
		}
	}
	writeJSON(w, http.StatusOK, tables)
}

// QRCode handles GET /api/tables/{n}/qrcode and returns a PNG.
func (h *TableHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n < 1 || n > h.tableCount {
		writeError(w, http.StatusNotFound, "table not found", h.logger)
		return
	}

	png, err := qrcode.Encode(h.MenuURL(n), qrcode.Medium, qrCodeSize)
	if err != nil {
		h.logger.Error().Err(err).Int("table", n).Msg("failed to encode QR code")
		writeError(w, http.StatusInternalServerError, "failed to generate QR code", h.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
