package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeOK(w http.ResponseWriter, message string) {
	writeMessage(w, http.StatusOK, message)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
	}
	writeMessage(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "userId must be an integer")
		return 0, false
	}
	return id, true
}

func identity(user User) identityDTO {
	return identityDTO{UserID: user.ID, Username: user.Username, Privilege: user.Privilege}
}

// handleLogin обрабатывает POST /login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == nil {
		writeMessage(w, http.StatusBadRequest, "userId must be an integer")
		return
	}
	session, user, err := s.store.Login(*req.UserID, req.Password)
	if err != nil {
		s.logger.Infof("login failed for user %d", *req.UserID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{SessionID: session.Token, User: identity(user)})
}

// handleRegister обрабатывает POST /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == nil {
		writeMessage(w, http.StatusBadRequest, "userId must be an integer")
		return
	}
	if err := s.store.Register(*req.UserID, req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "registered")
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	user, err := s.store.User(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identity(user))
}

func (s *Server) handleSetPrivilege(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var req privilegeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Privilege == nil {
		writeMessage(w, http.StatusBadRequest, "privilege must be an integer")
		return
	}
	if err := s.store.SetPrivilege(id, *req.Privilege); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "privilege updated")
}

// handleSetPassword разрешает менять свой пароль или любой пароль администратору.
func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	caller, _ := userFromContext(r.Context())
	if caller.ID != id && caller.Privilege < s.cfg.AdminPrivilege {
		writeMessage(w, http.StatusForbidden, "cannot change another user's password")
		return
	}
	var req passwordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.SetPassword(id, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "password updated")
}

func (s *Server) handleAddTrain(w http.ResponseWriter, r *http.Request) {
	var req addTrainRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SeatNum == nil || req.StationCount == nil {
		writeMessage(w, http.StatusBadRequest, "seatNum and stationCount must be integers")
		return
	}
	if *req.StationCount != len(req.Stations) {
		writeMessage(w, http.StatusBadRequest, "stationCount does not match stations")
		return
	}
	durations, ok := ints(req.Durations)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "durations must be integers")
		return
	}
	prices, ok := ints(req.Prices)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "prices must be integers")
		return
	}
	train := &Train{ID: req.TrainID, SeatNum: *req.SeatNum, Stations: req.Stations, Durations: durations, Prices: prices}
	if err := s.store.AddTrain(train); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "train added")
}

func ints(values []*int) ([]int, bool) {
	out := make([]int, len(values))
	for i, v := range values {
		if v == nil {
			return nil, false
		}
		out[i] = *v
	}
	return out, true
}

func (s *Server) handleGetTrain(w http.ResponseWriter, r *http.Request) {
	train, err := s.store.Train(mux.Vars(r)["trainId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trainDTO{
		TrainID:      train.ID,
		SeatNum:      train.SeatNum,
		StationCount: len(train.Stations),
		Stations:     train.Stations,
	})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.Release(req.TrainID, req.Date); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "tickets released")
}

func (s *Server) handleExpire(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.Expire(req.TrainID, req.Date); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "tickets expired")
}

func (s *Server) handleRemaining(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := seatRequest{TrainID: q.Get("trainId"), Date: q.Get("date"), DepartureStation: q.Get("departureStation")}
	seats, err := s.store.Remaining(req.TrainID, req.Date, req.DepartureStation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remainingDTO{
		TrainID:          req.TrainID,
		Date:             req.Date,
		DepartureStation: req.DepartureStation,
		RemainingSeats:   seats,
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req seatRequest
	if !decode(w, r, &req) {
		return
	}
	user, _ := userFromContext(r.Context())
	if err := s.store.Buy(user.ID, req.TrainID, req.Date, req.DepartureStation); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "ticket bought")
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	var req seatRequest
	if !decode(w, r, &req) {
		return
	}
	user, _ := userFromContext(r.Context())
	if err := s.store.Refund(user.ID, req.TrainID, req.Date, req.DepartureStation); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "ticket refunded")
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	resp := ordersResponse{Orders: []orderDTO{}}
	for _, order := range s.store.Orders(user.ID) {
		resp.Orders = append(resp.Orders, orderDTO{TrainID: order.TrainID, Date: order.Date, DepartureStation: order.DepartureStation})
	}
	writeJSON(w, http.StatusOK, resp)
}

func stationQuery(r *http.Request) (string, string) {
	q := r.URL.Query()
	return q.Get("startStation"), q.Get("endStation")
}

func (s *Server) handleRouteDisplay(w http.ResponseWriter, r *http.Request) {
	start, end := stationQuery(r)
	segments, err := s.store.DirectSegments(start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(segments) == 0 {
		writeMessage(w, http.StatusNotFound, "no direct train from "+start+" to "+end)
		return
	}
	writeJSON(w, http.StatusOK, routeDisplayDTO{StartStation: start, EndStation: end, Routes: segments[0].Stations})
}

func (s *Server) handleRouteBest(w http.ResponseWriter, r *http.Request) {
	start, end := stationQuery(r)
	preference := r.URL.Query().Get("preference")
	switch preference {
	case "":
		preference = "time"
	case "time", "price":
	default:
		writeMessage(w, http.StatusBadRequest, "preference must be time or price")
		return
	}
	segments, err := s.store.DirectSegments(start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	best, ok := Best(segments, preference)
	if !ok {
		writeMessage(w, http.StatusNotFound, "no direct train from "+start+" to "+end)
		return
	}
	writeJSON(w, http.StatusOK, bestPathDTO{
		StartStation: start,
		EndStation:   end,
		Path:         best.Stations,
		TotalTime:    best.TotalTime,
		TotalPrice:   best.TotalPrice,
	})
}

func (s *Server) handleRouteAccessibility(w http.ResponseWriter, r *http.Request) {
	start, end := stationQuery(r)
	segments, err := s.store.DirectSegments(start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accessibilityDTO{StartStation: start, EndStation: end, Accessible: len(segments) > 0})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "OK")
}
