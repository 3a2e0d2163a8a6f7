package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/neonpay/neonpay-gobackend/internal/auth"
	"github.com/neonpay/neonpay-gobackend/internal/models"
	"github.com/neonpay/neonpay-gobackend/internal/services"
)

type PaymentHandler struct {
	service   *services.PaymentService
	jwtSecret []byte
}

func NewPaymentHandler(service *services.PaymentService, jwtSecret []byte) *PaymentHandler {
	return &PaymentHandler{service: service, jwtSecret: jwtSecret}
}

// CreatePayment handles POST /api/payment
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.FromRequest(h.jwtSecret, r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req struct {
		Name   string `json:"name"`
		UPI    string `json:"upi"`
		Amount string `json:"amount"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, err := h.service.Create(r.Context(), userID, req.Name, req.UPI, req.Amount, req.Note)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		log.Printf("Failed to create payment: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save payment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     payment.ID,
		"upiURI": payment.UPIURI(),
	})
}

// GetPayment handles GET /api/payment/{paymentID}. No auth: the payer has
// no account, so the payer page reads by id alone.
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := mux.Vars(r)["paymentID"]

	payment, err := h.service.GetPublic(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		log.Printf("Failed to fetch payment %s: %v", paymentID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch payment")
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// GetPayments handles GET /api/payments
func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.FromRequest(h.jwtSecret, r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	search := r.URL.Query().Get("search")
	status := r.URL.Query().Get("status")

	payments, err := h.service.List(r.Context(), userID, search, status)
	if err != nil {
		log.Printf("Failed to fetch payments for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}
	if payments == nil {
		payments = []models.PaymentRequest{}
	}

	writeJSON(w, http.StatusOK, payments)
}

// ConfirmPayment handles POST /api/payment/{paymentID}/confirm
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.FromRequest(h.jwtSecret, r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	paymentID := mux.Vars(r)["paymentID"]

	payment, err := h.service.Confirm(r.Context(), paymentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "Payment not found")
		case errors.Is(err, services.ErrNotOwner):
			writeError(w, http.StatusForbidden, "Unauthorized")
		case errors.Is(err, services.ErrExpired):
			writeError(w, http.StatusBadRequest, "Payment request has expired")
		default:
			log.Printf("Failed to confirm payment %s: %v", paymentID, err)
			writeError(w, http.StatusInternalServerError, "Failed to confirm payment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Payment confirmed",
		"payment": payment,
	})
}

// GetStats handles GET /api/stats
func (h *PaymentHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.FromRequest(h.jwtSecret, r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to fetch stats for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
