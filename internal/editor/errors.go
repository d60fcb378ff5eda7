package editor

import "errors"

// Ошибки редактора; API переводит их в HTTP-статусы через errors.Is.
var (
	ErrProjectNotFound     = errors.New("проект не найден")
	ErrObjectNotFound      = errors.New("объект не найден")
	ErrBehaviorNotFound    = errors.New("поведение не найдено")
	ErrBehaviorExists      = errors.New("поведение с таким именем уже есть")
	ErrUnknownBehaviorType = errors.New("неизвестный тип поведения")
	ErrInvalidProperty     = errors.New("недопустимое значение свойства")
	ErrInvalidName         = errors.New("пустое имя")
	ErrInvalidDocument     = errors.New("документ не разобран")
)
