package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smarthome-be/internal/auth"
	"smarthome-be/internal/logger"
	"smarthome-be/internal/order"
	"smarthome-be/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeNotFoundJSON(w http.ResponseWriter) {
	utils.WriteJSONError(w, "not found", http.StatusNotFound)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	var in order.CreateOrderInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.orders.CreateOrder(r.Context(), in)
	if err != nil {
		for _, known := range []error{order.ErrEmptyItems, order.ErrInvalidMethod, order.ErrInvalidItem} {
			if errors.Is(err, known) {
				utils.WriteJSONError(w, known.Error(), http.StatusBadRequest)
				return
			}
		}
		log.Error("create order failed", zap.Error(err))
		utils.WriteJSONError(w, order.ErrCreateOrder.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, createOrderResponse{
		ID:     res.ID,
		Number: res.Number,
		Total:  res.Total.InexactFloat64(),
	})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	o, err := s.orders.GetOrderByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			utils.WriteJSONError(w, order.ErrOrderNotFound.Error(), http.StatusNotFound)
			return
		}
		logger.FromCtx(r.Context()).Error("get order failed", zap.String("number", number), zap.Error(err))
		utils.WriteJSONError(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	var req loginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if s.cfg.AdminEmail == "" {
		utils.WriteJSONError(w, "admin login is not configured", http.StatusServiceUnavailable)
		return
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), s.cfg.AdminEmail) {
		utils.WriteJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.tokens.Login(s.cfg.AdminEmail, req.Password, s.cfg.AdminPasswordHash)
	switch {
	case errors.Is(err, auth.ErrAdminNotEnabled):
		utils.WriteJSONError(w, "admin login is not configured", http.StatusServiceUnavailable)
		return
	case errors.Is(err, auth.ErrInvalidPassword):
		log.Warn("admin login rejected", zap.String("ip", utils.ClientIP(r)))
		utils.WriteJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	case err != nil:
		log.Error("admin login failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) adminOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := s.orders.ListRecentOrders(r.Context(), limit)
	if err != nil {
		logger.FromCtx(r.Context()).Error("list orders failed", zap.Error(err))
		utils.WriteJSONError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			logger.FromCtx(ctx).Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	utils.WriteJSON(w, status, map[string]any{"checks": results})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, s.metrics.Snapshot())
}
