package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fuel-backend/internal/ledger"
	"fuel-backend/internal/metrics"
	"fuel-backend/internal/reports"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

type DebtorHandler struct {
	Debtors    *services.DebtorService
	Statements *services.StatementService
	Now        services.Clock
}

func NewDebtorHandler(d *services.DebtorService, s *services.StatementService, now services.Clock) *DebtorHandler {
	return &DebtorHandler{Debtors: d, Statements: s, Now: now}
}

func (h *DebtorHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Debtors.List(r.Context(), windowArgs(r), r.URL.Query().Get("client"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *DebtorHandler) Details(w http.ResponseWriter, r *http.Request) {
	details, err := h.Debtors.Details(r.Context(), windowArgs(r), r.URL.Query().Get("client"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, details)
}

func (h *DebtorHandler) Export(w http.ResponseWriter, r *http.Request) {
	list, err := h.Debtors.List(r.Context(), windowArgs(r), r.URL.Query().Get("client"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, err := reports.DebtorsXLSX(list.Period, list.Debtors)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.File(w, reports.XLSXContentType, fmt.Sprintf("debtors-%s.xlsx", h.Now().Format("20060102")), body)
}

// Statement serves the {client} statement as json (default), pdf or xlsx.
func (h *DebtorHandler) Statement(w http.ResponseWriter, r *http.Request) {
	h.writeStatement(w, r, mux.Vars(r)["client"])
}

func (h *DebtorHandler) writeStatement(w http.ResponseWriter, r *http.Request, clientToken string) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "pdf" && format != "xlsx" {
		utils.Error(w, http.StatusBadRequest, "format must be json, pdf or xlsx")
		return
	}

	st, err := h.Statements.Build(r.Context(), clientToken, windowArgs(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, contentType, err := RenderStatement(st, format, h.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	metrics.StatementsBuilt.WithLabelValues(format).Inc()
	if format == "json" {
		utils.JSON(w, http.StatusOK, st)
		return
	}
	utils.File(w, contentType, StatementFilename(st, format), body)
}

// RenderStatement returns the document bytes for pdf and xlsx; json is
// written by the caller.
func RenderStatement(st *ledger.Statement, format string, now time.Time) ([]byte, string, error) {
	switch format {
	case "pdf":
		b, err := reports.StatementPDF(st, now)
		return b, reports.PDFContentType, err
	case "xlsx":
		b, err := reports.StatementXLSX(st)
		return b, reports.XLSXContentType, err
	}
	return nil, "application/json", nil
}

// StatementFilename is statement-<code>-<start>.<ext>.
func StatementFilename(st *ledger.Statement, ext string) string {
	return fmt.Sprintf("statement-%s-%s.%s", st.ClientCode, st.Window.Start.Format("2006-01"), ext)
}
