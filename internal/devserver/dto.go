package devserver

type loginRequest struct {
	UserID   *int64 `json:"userId"`
	Password string `json:"password"`
}

type identityDTO struct {
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Privilege int    `json:"privilege"`
}

type loginResponse struct {
	SessionID string      `json:"sessionId"`
	User      identityDTO `json:"user"`
}

type registerRequest struct {
	UserID   *int64 `json:"userId"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type privilegeRequest struct {
	Privilege *int `json:"privilege"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type addTrainRequest struct {
	TrainID      string   `json:"trainId"`
	SeatNum      *int     `json:"seatNum"`
	StationCount *int     `json:"stationCount"`
	Stations     []string `json:"stations"`
	Durations    []*int   `json:"durations"`
	Prices       []*int   `json:"prices"`
}

type trainDTO struct {
	TrainID      string   `json:"trainId"`
	SeatNum      int      `json:"seatNum"`
	StationCount int      `json:"stationCount"`
	Stations     []string `json:"stations"`
}

type scheduleRequest struct {
	TrainID string `json:"trainId"`
	Date    string `json:"date"`
}

type seatRequest struct {
	TrainID          string `json:"trainId"`
	Date             string `json:"date"`
	DepartureStation string `json:"departureStation"`
}

type remainingDTO struct {
	TrainID          string `json:"trainId"`
	Date             string `json:"date"`
	DepartureStation string `json:"departureStation"`
	RemainingSeats   int    `json:"remainingSeats"`
}

type orderDTO struct {
	TrainID          string `json:"trainId"`
	Date             string `json:"date"`
	DepartureStation string `json:"departureStation"`
}

type ordersResponse struct {
	Orders []orderDTO `json:"orders"`
}

type routeDisplayDTO struct {
	StartStation string   `json:"startStation"`
	EndStation   string   `json:"endStation"`
	Routes       []string `json:"routes"`
}

type bestPathDTO struct {
	StartStation string   `json:"startStation"`
	EndStation   string   `json:"endStation"`
	Path         []string `json:"path"`
	TotalTime    int      `json:"totalTime"`
	TotalPrice   int      `json:"totalPrice"`
}

type accessibilityDTO struct {
	StartStation string `json:"startStation"`
	EndStation   string `json:"endStation"`
	Accessible   bool   `json:"accessible"`
}

type messageResponse struct {
	Message string `json:"message"`
}
