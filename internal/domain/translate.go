package domain

import (
	"errors"
	"fmt"
)

// DiagnosticCode — фиксированный словарь кодов отказа, которым делегат
// хранилища сигнализирует о причине ошибки.
type DiagnosticCode string

const (
	// CodeUniqueViolation — нарушено ограничение уникальности.
	CodeUniqueViolation DiagnosticCode = "unique_violation"
	// CodeNotFound — затронутая строка не существует.
	CodeNotFound DiagnosticCode = "not_found"
	// CodeInvalid — хранилище отклонило данные как некорректные.
	CodeInvalid DiagnosticCode = "invalid"
	// CodeConnection — сбой подключения или фатальная ошибка движка.
	CodeConnection DiagnosticCode = "connection"
	// CodeOther — неклассифицированный отказ хранилища.
	CodeOther DiagnosticCode = "other"
)

// StorageError переносит диагностику делегата через границу хранилища.
// За пределы сервисного слоя она не выходит: Translate заменяет её
// значением таксономии, сохраняя текст диагностики как деталь.
type StorageError struct {
	Code    DiagnosticCode
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage %s: %s", e.Code, e.Message)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError конструирует диагностическую ошибку делегата.
func NewStorageError(code DiagnosticCode, message string, cause error) *StorageError {
	return &StorageError{Code: code, Message: message, Cause: cause}
}

// translationTable — одношаговое табличное соответствие код → вид таксономии.
var translationTable = map[DiagnosticCode]error{
	CodeUniqueViolation: ErrConflict,
	CodeNotFound:        ErrNotFound,
	CodeInvalid:         ErrValidation,
	CodeConnection:      ErrUnavailable,
}

// Translate классифицирует отказ хранилища в закрытую таксономию.
// Повторных попыток не делает. Уже классифицированные ошибки проходят без
// изменений. Неизвестные коды и не-диагностические ошибки намеренно падают
// в ErrValidation: исходный backend относил неклассифицированные отказы
// записи к ошибкам ввода клиента, и внешне наблюдаемые статусы должны
// совпадать.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsConflict(err) || IsUnavailable(err) {
		return err
	}

	var se *StorageError
	if errors.As(err, &se) {
		kind, ok := translationTable[se.Code]
		if !ok {
			kind = ErrValidation
		}
		return fmt.Errorf("%w: %s", kind, se.Message)
	}

	return fmt.Errorf("%w: %v", ErrValidation, err)
}
