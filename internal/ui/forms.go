package ui

import (
	"trainsys/client/internal/route"
	"trainsys/client/internal/state"
	"trainsys/client/internal/ticket"
	"trainsys/client/internal/train"
	"trainsys/client/internal/user"
	"trainsys/client/internal/view"
)

// fieldSpec описывает одно поле ввода.
type fieldSpec struct {
	Name        string
	Label       string
	Placeholder string
	Password    bool
}

// formSpec описывает форму раздела, отправляющую операцию.
type formSpec struct {
	Name      string
	Title     string
	Operation string
	Button    string
	Fields    []fieldSpec
	Target    view.Target
}

// sectionSpec описывает раздел навигации и его формы.
type sectionSpec struct {
	View  state.View
	Title string
	Forms []formSpec
}

var (
	fieldUserID   = fieldSpec{Name: "userId", Label: "ID пользователя"}
	fieldPassword = fieldSpec{Name: "password", Label: "Пароль", Password: true}
	fieldTrainID  = fieldSpec{Name: "trainId", Label: "Номер поезда", Placeholder: "G101"}
	fieldDate     = fieldSpec{Name: "date", Label: "Дата", Placeholder: "2024-01-01"}
	fieldStation  = fieldSpec{Name: "departureStation", Label: "Станция отправления"}
	fieldStart    = fieldSpec{Name: "startStation", Label: "Откуда"}
	fieldEnd      = fieldSpec{Name: "endStation", Label: "Куда"}
)

var seatFields = []fieldSpec{fieldTrainID, fieldDate, fieldStation}

// sections задаёт состав разделов в порядке меню.
var sections = []sectionSpec{
	{View: state.ViewLogin, Title: "Вход", Forms: []formSpec{{
		Name: "login", Title: "Вход", Operation: user.OpLogin, Button: "Войти",
		Fields: []fieldSpec{fieldUserID, fieldPassword},
	}}},
	{View: state.ViewRegister, Title: "Регистрация", Forms: []formSpec{{
		Name: "register", Title: "Регистрация", Operation: user.OpRegister, Button: "Зарегистрироваться",
		Fields: []fieldSpec{fieldUserID, {Name: "username", Label: "Имя пользователя"}, fieldPassword},
	}}},
	{View: state.ViewQueryRemaining, Title: "Остаток билетов", Forms: []formSpec{{
		Name: "query-remaining", Title: "Остаток билетов", Operation: ticket.OpQueryRemaining, Button: "Найти",
		Fields: seatFields, Target: view.TargetRemaining,
	}}},
	{View: state.ViewBuyTicket, Title: "Покупка билета", Forms: []formSpec{{
		Name: "buy-ticket", Title: "Покупка билета", Operation: ticket.OpBuy, Button: "Купить",
		Fields: seatFields,
	}}},
	{View: state.ViewRefundTicket, Title: "Возврат билета", Forms: []formSpec{{
		Name: "refund-ticket", Title: "Возврат билета", Operation: ticket.OpRefund, Button: "Вернуть",
		Fields: seatFields,
	}}},
	{View: state.ViewMyOrders, Title: "Мои заказы", Forms: []formSpec{{
		Name: "my-orders", Title: "Мои заказы", Operation: ticket.OpQueryOrders, Button: "Обновить",
		Target: view.TargetOrders,
	}}},
	{View: state.ViewRouteQuery, Title: "Маршруты", Forms: []formSpec{
		{
			Name: "display-route", Title: "Маршрут", Operation: route.OpDisplay, Button: "Показать",
			Fields: []fieldSpec{fieldStart, fieldEnd}, Target: view.TargetRoute,
		},
		{
			Name: "best-path", Title: "Лучший маршрут", Operation: route.OpBestPath, Button: "Найти",
			Fields: []fieldSpec{fieldStart, fieldEnd, {Name: "preference", Label: "Предпочтение", Placeholder: "time или price"}},
			Target: view.TargetBestPath,
		},
		{
			Name: "accessibility", Title: "Достижимость", Operation: route.OpAccessibility, Button: "Проверить",
			Fields: []fieldSpec{fieldStart, fieldEnd}, Target: view.TargetAccessibility,
		},
	}},
	{View: state.ViewAddTrain, Title: "Добавить поезд", Forms: []formSpec{{
		Name: train.FormAddTrain, Title: "Добавить поезд", Operation: train.OpAddTrain, Button: "Добавить",
		Fields: []fieldSpec{
			fieldTrainID,
			{Name: "seatNum", Label: "Число мест"},
			{Name: "stationCount", Label: "Число станций"},
			{Name: "stations", Label: "Станции", Placeholder: "A/B/C"},
			{Name: "durations", Label: "Время перегонов, мин", Placeholder: "10/20"},
			{Name: "prices", Label: "Цены перегонов", Placeholder: "5/8"},
		},
	}}},
	{View: state.ViewQueryTrain, Title: "Поиск поезда", Forms: []formSpec{{
		Name: "query-train", Title: "Поиск поезда", Operation: train.OpQueryTrain, Button: "Найти",
		Fields: []fieldSpec{fieldTrainID}, Target: view.TargetTrain,
	}}},
	{View: state.ViewTicketManagement, Title: "Управление продажей", Forms: []formSpec{
		{
			Name: "release-ticket", Title: "Выпуск билетов", Operation: ticket.OpRelease, Button: "Выпустить",
			Fields: []fieldSpec{fieldTrainID, fieldDate},
		},
		{
			Name: "expire-ticket", Title: "Снятие с продажи", Operation: ticket.OpExpire, Button: "Снять",
			Fields: []fieldSpec{fieldTrainID, fieldDate},
		},
	}},
	{View: state.ViewUserManagement, Title: "Пользователи", Forms: []formSpec{
		{
			Name: "query-user", Title: "Поиск пользователя", Operation: user.OpQueryUser, Button: "Найти",
			Fields: []fieldSpec{fieldUserID}, Target: view.TargetUser,
		},
		{
			Name: "modify-privilege", Title: "Изменить права", Operation: user.OpModifyPrivilege, Button: "Изменить",
			Fields: []fieldSpec{fieldUserID, {Name: "privilege", Label: "Уровень прав"}},
		},
		{
			Name: "modify-password", Title: "Сменить пароль", Operation: user.OpModifyPassword, Button: "Сменить",
			Fields: []fieldSpec{fieldUserID, {Name: "password", Label: "Новый пароль", Password: true}},
		},
	}},
}

// Operations возвращает имена всех операций, на которые ссылаются формы.
func Operations() []string {
	var ops []string
	for _, section := range sections {
		for _, f := range section.Forms {
			ops = append(ops, f.Operation)
		}
	}
	return ops
}
