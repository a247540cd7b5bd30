package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Ошибки хранилища; обработчики переводят их в HTTP статусы.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Store хранит пользователей, сессии, поезда и заказы в памяти.
type Store struct {
	mu        sync.RWMutex
	users     map[int64]*User
	sessions  map[string]*Session
	trains    map[string]*Train
	schedules map[scheduleKey]int
	orders    []Order
	hashCost  int
}

// NewStore создаёт пустое хранилище; cost <= 0 означает bcrypt.DefaultCost.
func NewStore(cost int) *Store {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Store{
		users:     make(map[int64]*User),
		sessions:  make(map[string]*Session),
		trains:    make(map[string]*Train),
		schedules: make(map[scheduleKey]int),
		hashCost:  cost,
	}
}

// Seed загружает пользователей и поезда из конфигурации.
func (s *Store) Seed(cfg *Config) error {
	for _, seed := range cfg.Users {
		if err := s.Register(seed.UserID, seed.Username, seed.Password); err != nil {
			return fmt.Errorf("seed user %d: %w", seed.UserID, err)
		}
		if seed.Privilege <= 0 {
			continue
		}
		if err := s.SetPrivilege(seed.UserID, seed.Privilege); err != nil {
			return fmt.Errorf("seed user %d: %w", seed.UserID, err)
		}
	}
	for _, seed := range cfg.Trains {
		train := &Train{
			ID:        seed.TrainID,
			SeatNum:   seed.SeatNum,
			Stations:  seed.Stations,
			Durations: seed.Durations,
			Prices:    seed.Prices,
		}
		if err := s.AddTrain(train); err != nil {
			return fmt.Errorf("seed train %s: %w", seed.TrainID, err)
		}
		for _, date := range seed.ReleasedDates {
			if err := s.Release(seed.TrainID, date); err != nil {
				return fmt.Errorf("seed train %s: %w", seed.TrainID, err)
			}
		}
	}
	return nil
}

// Register создаёт пользователя с уровнем прав 1.
func (s *Store) Register(id int64, username, password string) error {
	if id <= 0 || strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: userId, username and password are required", ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[id]; exists {
		return fmt.Errorf("%w: user %d already exists", ErrConflict, id)
	}
	s.users[id] = &User{ID: id, Username: username, PasswordHash: hash, Privilege: 1}
	return nil
}

// Login проверяет пароль и выдаёт новый токен сессии.
func (s *Store) Login(id int64, password string) (*Session, User, error) {
	s.mu.RLock()
	user, ok := s.users[id]
	var hash []byte
	if ok {
		hash = user.PasswordHash
	}
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, User{}, fmt.Errorf("%w: wrong user id or password", ErrUnauthorized)
	}
	token, err := generateToken()
	if err != nil {
		return nil, User{}, fmt.Errorf("generate token: %w", err)
	}
	session := &Session{Token: token, UserID: id, IssuedAt: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session
	return session, *user, nil
}

// Authenticate возвращает пользователя по токену сессии.
func (s *Store) Authenticate(token string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return User{}, fmt.Errorf("%w: not logged in", ErrUnauthorized)
	}
	user, ok := s.users[session.UserID]
	if !ok {
		return User{}, fmt.Errorf("%w: not logged in", ErrUnauthorized)
	}
	return *user, nil
}

// User возвращает пользователя по ID.
func (s *Store) User(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return *user, nil
}

// SetPrivilege меняет уровень прав.
func (s *Store) SetPrivilege(id int64, privilege int) error {
	if privilege < 0 {
		return fmt.Errorf("%w: privilege must not be negative", ErrBadRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	user.Privilege = privilege
	return nil
}

// SetPassword меняет пароль.
func (s *Store) SetPassword(id int64, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	user.PasswordHash = hash
	return nil
}

// AddTrain добавляет поезд после проверки согласованности перегонов.
func (s *Store) AddTrain(train *Train) error {
	if err := validateTrain(train); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trains[train.ID]; exists {
		return fmt.Errorf("%w: train %s already exists", ErrConflict, train.ID)
	}
	s.trains[train.ID] = train
	return nil
}

func validateTrain(train *Train) error {
	switch {
	case strings.TrimSpace(train.ID) == "":
		return fmt.Errorf("%w: trainId is required", ErrBadRequest)
	case train.SeatNum <= 0:
		return fmt.Errorf("%w: seatNum must be positive", ErrBadRequest)
	case len(train.Stations) < 2:
		return fmt.Errorf("%w: at least two stations are required", ErrBadRequest)
	case len(train.Durations) != len(train.Stations)-1:
		return fmt.Errorf("%w: expected %d durations", ErrBadRequest, len(train.Stations)-1)
	case len(train.Prices) != len(train.Stations)-1:
		return fmt.Errorf("%w: expected %d prices", ErrBadRequest, len(train.Stations)-1)
	}
	for _, station := range train.Stations {
		if strings.TrimSpace(station) == "" {
			return fmt.Errorf("%w: station name is empty", ErrBadRequest)
		}
	}
	return nil
}

// Train возвращает копию поезда.
func (s *Store) Train(id string) (Train, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	train, ok := s.trains[id]
	if !ok {
		return Train{}, fmt.Errorf("%w: train %s", ErrNotFound, id)
	}
	return *train, nil
}

// Release выпускает в продажу все места поезда на дату.
func (s *Store) Release(trainID, date string) error {
	if date == "" {
		return fmt.Errorf("%w: date is required", ErrBadRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	train, ok := s.trains[trainID]
	if !ok {
		return fmt.Errorf("%w: train %s", ErrNotFound, trainID)
	}
	key := scheduleKey{TrainID: trainID, Date: date}
	if _, released := s.schedules[key]; released {
		return fmt.Errorf("%w: tickets for %s on %s already released", ErrConflict, trainID, date)
	}
	s.schedules[key] = train.SeatNum
	return nil
}

// Expire снимает поезд на дату с продажи.
func (s *Store) Expire(trainID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scheduleKey{TrainID: trainID, Date: date}
	if _, released := s.schedules[key]; !released {
		return fmt.Errorf("%w: tickets for %s on %s are not released", ErrNotFound, trainID, date)
	}
	delete(s.schedules, key)
	return nil
}

// Remaining возвращает число свободных мест.
func (s *Store) Remaining(trainID, date, station string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, err := s.seatKeyLocked(trainID, date, station)
	if err != nil {
		return 0, err
	}
	return s.schedules[key], nil
}

// Buy продаёт одно место пользователю.
func (s *Store) Buy(userID int64, trainID, date, station string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, err := s.seatKeyLocked(trainID, date, station)
	if err != nil {
		return err
	}
	if s.schedules[key] <= 0 {
		return fmt.Errorf("%w: sold out", ErrConflict)
	}
	s.schedules[key]--
	s.orders = append(s.orders, Order{UserID: userID, TrainID: trainID, Date: date, DepartureStation: station})
	return nil
}

// Refund возвращает билет пользователя.
func (s *Store) Refund(userID int64, trainID, date, station string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, order := range s.orders {
		if order.UserID == userID && order.TrainID == trainID && order.Date == date && order.DepartureStation == station {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			key := scheduleKey{TrainID: trainID, Date: date}
			if _, released := s.schedules[key]; released {
				s.schedules[key]++
			}
			return nil
		}
	}
	return fmt.Errorf("%w: no such order", ErrNotFound)
}

// Orders возвращает заказы пользователя в порядке покупки.
func (s *Store) Orders(userID int64) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Order{}
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out
}

func (s *Store) seatKeyLocked(trainID, date, station string) (scheduleKey, error) {
	train, ok := s.trains[trainID]
	if !ok {
		return scheduleKey{}, fmt.Errorf("%w: train %s", ErrNotFound, trainID)
	}
	if idx := train.stationIndex(station); idx < 0 || idx == len(train.Stations)-1 {
		return scheduleKey{}, fmt.Errorf("%w: train %s does not depart from %s", ErrBadRequest, trainID, station)
	}
	key := scheduleKey{TrainID: trainID, Date: date}
	if _, released := s.schedules[key]; !released {
		return scheduleKey{}, fmt.Errorf("%w: tickets for %s on %s are not released", ErrConflict, trainID, date)
	}
	return key, nil
}

// Segment описывает участок одного поезда между двумя станциями.
type Segment struct {
	TrainID    string
	Stations   []string
	TotalTime  int
	TotalPrice int
}

// DirectSegments возвращает участки поездов, идущих от start к end без пересадок,
// отсортированные по номеру поезда.
func (s *Store) DirectSegments(start, end string) ([]Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.stationKnownLocked(start) {
		return nil, fmt.Errorf("%w: station %s", ErrNotFound, start)
	}
	if !s.stationKnownLocked(end) {
		return nil, fmt.Errorf("%w: station %s", ErrNotFound, end)
	}
	var segments []Segment
	for _, train := range s.trains {
		from, to := train.stationIndex(start), train.stationIndex(end)
		if from < 0 || to < 0 || from >= to {
			continue
		}
		seg := Segment{TrainID: train.ID, Stations: append([]string(nil), train.Stations[from:to+1]...)}
		for i := from; i < to; i++ {
			seg.TotalTime += train.Durations[i]
			seg.TotalPrice += train.Prices[i]
		}
		segments = append(segments, seg)
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].TrainID < segments[j].TrainID })
	return segments, nil
}

// Best выбирает участок с минимальным временем или ценой.
func Best(segments []Segment, preference string) (Segment, bool) {
	best, found := Segment{}, false
	bestScore := math.MaxInt
	for _, seg := range segments {
		score := seg.TotalTime
		if preference == "price" {
			score = seg.TotalPrice
		}
		if score < bestScore {
			best, bestScore, found = seg, score, true
		}
	}
	return best, found
}

func (s *Store) stationKnownLocked(name string) bool {
	for _, train := range s.trains {
		if train.stationIndex(name) >= 0 {
			return true
		}
	}
	return false
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
