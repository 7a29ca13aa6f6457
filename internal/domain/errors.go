package domain

import (
	"errors"
	"fmt"
)

// Закрытая таксономия доменных ошибок. Каждая production-достижимая ошибка
// хранилища классифицируется ровно в один из четырёх видов.
var (
	// ErrValidation — некорректный или семантически неверный ввод вызывающей стороны.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound — запрошенная сущность не существует.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict — операция нарушила бы ограничение уникальности.
	ErrConflict = errors.New("resource conflict")
	// ErrUnavailable — хранилище недоступно или аварийно завершилось.
	ErrUnavailable = errors.New("storage unavailable")
)

// Инварианты команды создания заказа.
var (
	// ErrOrderItemsRequired возвращается, если заказ создаётся без единой позиции.
	ErrOrderItemsRequired = fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	// ErrOrderClientRequired возвращается при отсутствующем идентификаторе клиента.
	ErrOrderClientRequired = fmt.Errorf("%w: client id is required", ErrValidation)
	// ErrOrderCreatorRequired возвращается при отсутствующем идентификаторе создателя.
	ErrOrderCreatorRequired = fmt.Errorf("%w: created-by id is required", ErrValidation)
	// ErrOrderItemQtyInvalid возвращается при неположительном количестве в позиции.
	ErrOrderItemQtyInvalid = fmt.Errorf("%w: item quantity must be greater than zero", ErrValidation)
	// ErrPaymentMethodInvalid возвращается при неизвестной форме оплаты.
	ErrPaymentMethodInvalid = fmt.Errorf("%w: unknown payment method", ErrValidation)
	// ErrOrderStatusInvalid возвращается при неизвестном статусе заказа.
	ErrOrderStatusInvalid = fmt.Errorf("%w: unknown order status", ErrValidation)
)

// Ошибки обработки idempotency-key и публикации из outbox.
var (
	// ErrIdempotencyKeyRequired возвращается при пустом ключе идемпотентности.
	ErrIdempotencyKeyRequired = fmt.Errorf("%w: idempotency key is required", ErrValidation)
	// ErrIdempotencyRequestHashRequired возвращается при пустом хэше запроса.
	ErrIdempotencyRequestHashRequired = fmt.Errorf("%w: idempotency request hash is required", ErrValidation)
	// ErrIdempotencyKeyNotFound возвращается для неизвестного ключа.
	ErrIdempotencyKeyNotFound = fmt.Errorf("%w: idempotency key", ErrNotFound)
	// ErrIdempotencyKeyAlreadyExists возвращается при повторе ключа с тем же телом.
	ErrIdempotencyKeyAlreadyExists = fmt.Errorf("%w: idempotency key already exists", ErrConflict)
	// ErrIdempotencyHashMismatch возвращается при повторе ключа с другим телом запроса.
	ErrIdempotencyHashMismatch = fmt.Errorf("%w: idempotency key reused with a different request body", ErrConflict)
	// ErrOutboxPublish сигнализирует о сбое фиксации статуса outbox-сообщения.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// Validationf оборачивает ErrValidation деталью для вызывающей стороны.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsValidation проверяет принадлежность ошибки к виду ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound проверяет принадлежность ошибки к виду ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict проверяет принадлежность ошибки к виду ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsUnavailable проверяет принадлежность ошибки к виду ErrUnavailable.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
