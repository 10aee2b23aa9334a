package service

import (
	"sort"
	"time"

	"lacarta/internal/app/catalog/entity"
)

// maxVisiblePromotions - жёсткий потолок одновременно показываемых акций
// Тот же лимит используют quota guard-ы на пути записи
const maxVisiblePromotions = 2

// isEligibleAt вычисляет темпоральный предикат "акция живая в момент now"
// Все границы включительные: дата valid_to и секунда end_time ещё подходят.
// Акция без временных полей живая всегда, пока is_active = true
func isEligibleAt(p *entity.Promotion, now time.Time) bool {
	if !p.IsActive {
		return false
	}

	today := dateOnly(now)
	if p.ValidFrom != nil && today.Before(dateOnly(*p.ValidFrom)) {
		return false
	}
	if p.ValidTo != nil && today.After(dateOnly(*p.ValidTo)) {
		return false
	}

	if len(p.DaysOfWeek) > 0 && !p.DaysOfWeek.Contains(int(now.Weekday())) {
		return false
	}

	// Окно времени суток задаётся обоими полями или никаким
	if p.StartTime != nil || p.EndTime != nil {
		if p.StartTime == nil || p.EndTime == nil {
			return false
		}
		// Лексикографическое сравнение HH:MM:SS эквивалентно временному
		clock := now.Format("15:04:05")
		if clock < *p.StartTime || clock > *p.EndTime {
			return false
		}
	}

	return true
}

// eligibleAt фильтрует акции предикатом без ограничения размера
// Guard-ы считают размер полного набора, не усечённого
func eligibleAt(promotions []entity.Promotion, now time.Time) []entity.Promotion {
	var eligible []entity.Promotion
	for _, p := range promotions {
		if isEligibleAt(&p, now) {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// rankEligible возвращает публично показываемый набор: фильтр предикатом,
// сортировка (is_priority desc, created_at desc), максимум maxVisiblePromotions
func rankEligible(promotions []entity.Promotion, now time.Time) []entity.Promotion {
	eligible := eligibleAt(promotions, now)

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].IsPriority != eligible[j].IsPriority {
			return eligible[i].IsPriority
		}
		return eligible[i].CreatedAt.After(eligible[j].CreatedAt)
	})

	if len(eligible) > maxVisiblePromotions {
		eligible = eligible[:maxVisiblePromotions]
	}

	return eligible
}

// dateOnly отбрасывает время суток, оставляя календарную дату в UTC
// Колонки date сканируются как полночь UTC, поэтому сравнение корректно
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
