// Package view строит модели результатов из ответов API. Модели
// не кэшируются: каждая отрисовывается один раз и отбрасывается.
package view

import (
	"strconv"
	"strings"
)

// Target обозначает область экрана, в которую выводится результат запроса.
type Target string

const (
	TargetUser          Target = "user"
	TargetTrain         Target = "train"
	TargetRemaining     Target = "remaining"
	TargetOrders        Target = "orders"
	TargetRoute         Target = "route"
	TargetBestPath      Target = "best-path"
	TargetAccessibility Target = "accessibility"
)

// Status окрашивает значение поля.
type Status string

const (
	StatusNone    Status = ""
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// PathSeparator соединяет станции маршрута при отображении.
const PathSeparator = " → "

// Field описывает строку карточки «подпись: значение».
type Field struct {
	Label  string
	Value  string
	Status Status
}

// Table содержит табличный результат.
type Table struct {
	Header []string
	Rows   [][]string
}

// Card содержит готовую к отрисовке модель результата.
type Card struct {
	Title  string
	Fields []Field
	Table  *Table
	Note   string
	Error  string
}

// Painter отрисовывает карточку в область экрана; реализуется UI.
type Painter interface {
	Paint(target Target, card Card)
}

// ErrorCard строит встроенное сообщение об ошибке запроса.
func ErrorCard(message string) Card {
	return Card{Error: "Запрос не выполнен: " + message}
}

// UserInfo разбирает ответ GET /user/{userId}.
type UserInfo struct {
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Privilege int    `json:"privilege"`
}

func (u UserInfo) Card() Card {
	return Card{
		Title: "Пользователь",
		Fields: []Field{
			{Label: "ID пользователя", Value: strconv.FormatInt(u.UserID, 10)},
			{Label: "Имя", Value: u.Username},
			{Label: "Права", Value: strconv.Itoa(u.Privilege)},
		},
	}
}

// TrainInfo разбирает ответ GET /train/{trainId}.
type TrainInfo struct {
	TrainID      string   `json:"trainId"`
	SeatNum      int      `json:"seatNum"`
	StationCount int      `json:"stationCount"`
	Stations     []string `json:"stations"`
}

func (t TrainInfo) Card() Card {
	card := Card{
		Title: "Поезд",
		Fields: []Field{
			{Label: "Номер поезда", Value: t.TrainID},
			{Label: "Мест", Value: strconv.Itoa(t.SeatNum)},
			{Label: "Станций", Value: strconv.Itoa(t.StationCount)},
		},
	}
	if len(t.Stations) > 0 {
		card.Fields = append(card.Fields, Field{Label: "Станции", Value: strings.Join(t.Stations, PathSeparator)})
	}
	return card
}

// RemainingSeats разбирает ответ GET /ticket/remaining.
type RemainingSeats struct {
	TrainID          string `json:"trainId"`
	Date             string `json:"date"`
	DepartureStation string `json:"departureStation"`
	RemainingSeats   int    `json:"remainingSeats"`
}

func (r RemainingSeats) Card() Card {
	return Card{
		Title: "Остаток билетов",
		Fields: []Field{
			{Label: "Поезд", Value: r.TrainID},
			{Label: "Дата", Value: r.Date},
			{Label: "Станция отправления", Value: r.DepartureStation},
			{Label: "Свободных мест", Value: strconv.Itoa(r.RemainingSeats), Status: StatusSuccess},
		},
	}
}

// Order описывает один купленный билет.
type Order struct {
	TrainID          string `json:"trainId"`
	Date             string `json:"date"`
	DepartureStation string `json:"departureStation"`
}

// Orders разбирает ответ GET /ticket/orders.
type Orders struct {
	Orders []Order `json:"orders"`
}

func (o Orders) Card() Card {
	if len(o.Orders) == 0 {
		return Card{Title: "Мои заказы", Note: "Заказов пока нет"}
	}
	table := &Table{Header: []string{"Поезд", "Дата", "Станция отправления", "Статус"}}
	for _, order := range o.Orders {
		table.Rows = append(table.Rows, []string{order.TrainID, order.Date, order.DepartureStation, "Куплен"})
	}
	return Card{Title: "Мои заказы", Table: table}
}

// RouteDisplay разбирает ответ GET /route/display.
type RouteDisplay struct {
	StartStation string   `json:"startStation"`
	EndStation   string   `json:"endStation"`
	Routes       []string `json:"routes"`
}

func (r RouteDisplay) Card() Card {
	return Card{
		Title: "Маршрут",
		Fields: []Field{
			{Label: "Откуда", Value: r.StartStation},
			{Label: "Куда", Value: r.EndStation},
			{Label: "Маршрут", Value: strings.Join(r.Routes, PathSeparator)},
		},
	}
}

// RoutePath разбирает ответ GET /route/best.
type RoutePath struct {
	StartStation string   `json:"startStation"`
	EndStation   string   `json:"endStation"`
	Path         []string `json:"path"`
	TotalTime    int      `json:"totalTime"`
	TotalPrice   int      `json:"totalPrice"`
}

func (r RoutePath) Card() Card {
	return Card{
		Title: "Лучший маршрут",
		Fields: []Field{
			{Label: "Откуда", Value: r.StartStation},
			{Label: "Куда", Value: r.EndStation},
			{Label: "Путь", Value: strings.Join(r.Path, PathSeparator)},
			{Label: "Время в пути", Value: strconv.Itoa(r.TotalTime) + " мин"},
			{Label: "Стоимость", Value: strconv.Itoa(r.TotalPrice) + " руб."},
		},
	}
}

// Accessibility разбирает ответ GET /route/accessibility.
type Accessibility struct {
	StartStation string `json:"startStation"`
	EndStation   string `json:"endStation"`
	Accessible   bool   `json:"accessible"`
}

func (a Accessibility) Card() Card {
	status := Field{Label: "Статус", Value: "Недостижимо", Status: StatusError}
	if a.Accessible {
		status = Field{Label: "Статус", Value: "Достижимо", Status: StatusSuccess}
	}
	return Card{
		Title: "Достижимость",
		Fields: []Field{
			{Label: "Откуда", Value: a.StartStation},
			{Label: "Куда", Value: a.EndStation},
			status,
		},
	}
}
