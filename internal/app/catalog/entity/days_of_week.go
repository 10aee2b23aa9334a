package entity

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// DaysOfWeek - набор номеров дней недели (0 = воскресенье ... 6 = суббота)
// Хранится в PostgreSQL как integer[]; пустой набор означает "каждый день"
type DaysOfWeek []int

// Contains сообщает, входит ли день недели в набор
func (d DaysOfWeek) Contains(weekday int) bool {
	for _, day := range d {
		if day == weekday {
			return true
		}
	}
	return false
}

// Value сериализует набор в текстовый литерал массива PostgreSQL: {1,3,5}
func (d DaysOfWeek) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	parts := make([]string, len(d))
	for i, day := range d {
		parts[i] = strconv.Itoa(day)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Scan разбирает текстовый литерал массива PostgreSQL
func (d *DaysOfWeek) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}

	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported days_of_week source type %T", src)
	}

	raw = strings.Trim(raw, "{}")
	if raw == "" {
		*d = DaysOfWeek{}
		return nil
	}

	parts := strings.Split(raw, ",")
	days := make(DaysOfWeek, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid days_of_week element %q: %w", part, err)
		}
		days = append(days, day)
	}

	*d = days
	return nil
}

// GormDataType указывает GORM тип колонки для миграций
func (DaysOfWeek) GormDataType() string { return "integer[]" }
