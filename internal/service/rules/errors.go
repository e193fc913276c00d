package rules

import "errors"

var (
	// ErrRuleNotFound возвращается, когда правило не найдено
	ErrRuleNotFound = errors.New("availability rule not found")

	// ErrInvalidRule возвращается при некорректном правиле
	ErrInvalidRule = errors.New("invalid availability rule")

	// ErrInvalidInput возвращается при некорректных параметрах запроса
	ErrInvalidInput = errors.New("invalid input data")

	// ErrStoreUnavailable возвращается, когда хранилище недоступно
	ErrStoreUnavailable = errors.New("service: store unavailable")
)
