package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/safar/minimarket/internal/models"
	"github.com/safar/minimarket/internal/store"
)

// respondList writes items as a bare array, or as an offset page when the
// client asked for one with ?page or ?page_size.
func respondList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	query := r.URL.Query()
	if !query.Has("page") && !query.Has("page_size") {
		if items == nil {
			items = []T{}
		}
		respondJSON(w, http.StatusOK, items)
		return
	}

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	respondJSON(w, http.StatusOK, store.Paginate(items, page, pageSize))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	respondList(w, r, h.catalog.List())
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	product, err := h.catalog.Insert(in)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "code", product.Code)
	respondJSON(w, http.StatusCreated, product)
}

// replaceProduct handles PUT: name, stock and price must all be present.
// Omitted category and code keep their stored values.
func (h *Handler) replaceProduct(w http.ResponseWriter, r *http.Request) {
	var patch models.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if missing := patch.MissingForReplace(); len(missing) > 0 {
		h.respondStoreError(w, r, &store.ValidationError{Fields: missing, Reason: "missing required fields"})
		return
	}
	h.updateProduct(w, r, patch)
}

func (h *Handler) patchProduct(w http.ResponseWriter, r *http.Request) {
	var patch models.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	h.updateProduct(w, r, patch)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, patch models.ProductPatch) {
	product, err := h.catalog.Update(chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(id); err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	respondList(w, r, h.customers.List())
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}

	customer, err := h.customers.Insert(in)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	if customerID := r.URL.Query().Get("customerId"); customerID != "" {
		respondList(w, r, h.ledger.ListByCustomer(customerID))
		return
	}
	respondList(w, r, h.ledger.List())
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.ledger.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req models.SaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sale, err := h.engine.RegisterSale(r.Context(), req)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	h.logger.Info("sale registered",
		"sale_id", sale.ID,
		"customer_id", sale.CustomerID,
		"items", len(sale.Items),
		"total", sale.Total.String(),
	)
	respondJSON(w, http.StatusCreated, sale)
}
