package apperr

import "errors"

// Категории ошибок ядра. Сервисы оборачивают их через fmt.Errorf("%w: ..."),
// HTTP-слой сопоставляет каждую категорию со статус-кодом через errors.Is.
var (
	// ErrNotFound - запрошенная сущность не существует
	ErrNotFound = errors.New("запись не найдена")
	// ErrValidation - некорректные или неполные входные данные
	ErrValidation = errors.New("некорректные входные данные")
	// ErrConstraint - операция нарушила бы инвариант реестра (переплата, повторное погашение)
	ErrConstraint = errors.New("нарушение ограничения реестра")
	// ErrForbidden - целевая сущность вне зоны доступа вызывающего
	ErrForbidden = errors.New("операция вне зоны доступа")
	// ErrStorage - хранилище недоступно или запись прервана
	ErrStorage = errors.New("ошибка хранилища")
)
