package devserver

import "time"

// User описывает зарегистрированного пользователя.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	Privilege    int
}

// Session хранит выданный при входе токен.
type Session struct {
	Token    string
	UserID   int64
	IssuedAt time.Time
}

// Train описывает поезд с остановками; Durations и Prices описывают перегоны.
type Train struct {
	ID        string
	SeatNum   int
	Stations  []string
	Durations []int
	Prices    []int
}

func (t *Train) stationIndex(name string) int {
	for i, station := range t.Stations {
		if station == name {
			return i
		}
	}
	return -1
}

type scheduleKey struct {
	TrainID string
	Date    string
}

// Order описывает купленный билет.
type Order struct {
	UserID           int64
	TrainID          string
	Date             string
	DepartureStation string
}
