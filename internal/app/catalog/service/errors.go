package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNameTaken     = errors.New("product with this name already exists")
	ErrPromotionNotFound    = errors.New("promotion not found")
	ErrTimeWindowIncomplete = errors.New("start_time and end_time must be set together")
)

// Коды квот, возвращаемые guard-ами планировщика промо-акций
const (
	QuotaCodePriority = "PRIORITY_LIMIT"
	QuotaCodeOverlap  = "ACTIVE_OVERLAP_LIMIT"
)

// QuotaError возвращается quota guard-ом при отклонении записи
// Blocking содержит названия акций, занимающих квоту - для оператора
type QuotaError struct {
	Code     string
	Blocking []string
}

func (e *QuotaError) Error() string {
	if len(e.Blocking) == 0 {
		return fmt.Sprintf("promotion quota exceeded: %s", e.Code)
	}
	return fmt.Sprintf("promotion quota exceeded: %s (blocked by %s)", e.Code, strings.Join(e.Blocking, ", "))
}
