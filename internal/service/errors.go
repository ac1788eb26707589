package service

import "errors"

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrImportFailed = errors.New("import failed")
	ErrNoOp         = errors.New("no rows affected")
)

const (
	MsgMissingArgs     = "Не указаны все необходимые аргументы"
	MsgBadFormat       = "Неверный формат запроса"
	MsgInBasket        = "Товар уже в корзине"
	MsgBadArgs         = "Неправильно указаны аргументы"
	MsgShopNotFound    = "Магазин не найден"
	MsgContactNotFound = "Контакт не найден"
	MsgUserNotFound    = "Пользователь не найден"
	MsgImportFailed    = "Ошибка загрузки прайса: "
)

// Error is a business failure with the text shown to the client.
// errors.Is matches both its kind and its cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Message returns the client text of a business failure, or "".
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
