package processor

import (
	"context"
	"log"

	"lacarta/internal/app/catalog/service"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает ежедневную уборку промо-акций
// Акции с истёкшим valid_to и так не проходят предикат показа;
// уборка лишь снимает с них is_active, чтобы админ-список не врал
type CronScheduler struct {
	cron         *cron.Cron
	promotionSvc service.PromotionOperations
	catalogSvc   service.CatalogOperations
}

func NewCronScheduler(promotionSvc service.PromotionOperations, catalogSvc service.CatalogOperations) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &CronScheduler{
		cron:         c,
		promotionSvc: promotionSvc,
		catalogSvc:   catalogSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	log.Printf("Starting cron scheduler with schedule: %s", schedule)

	_, err := s.cron.AddFunc(schedule, func() {
		log.Println("Cron job triggered: deactivating expired promotions")

		count, err := s.promotionSvc.DeactivateExpired(ctx)
		if err != nil {
			log.Printf("ERROR: Failed to deactivate expired promotions: %v", err)
			return
		}
		log.Printf("Cron job completed: %d promotions deactivated", count)

		s.refreshVocabularies(ctx)
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started")

	// Стартовая уборка закрывает накопившийся за простой сервиса хвост
	log.Println("Performing initial expired promotions sweep...")
	if _, err := s.promotionSvc.DeactivateExpired(ctx); err != nil {
		log.Printf("WARNING: Failed initial promotions sweep: %v", err)
	}
	s.refreshVocabularies(ctx)

	return nil
}

// refreshVocabularies прогревает кэш словарей: листинги читают сквозь Redis
// и сами заполняют его после инвалидации
func (s *CronScheduler) refreshVocabularies(ctx context.Context) {
	if _, err := s.catalogSvc.ListIngredients(ctx); err != nil {
		log.Printf("WARNING: Failed to refresh ingredients cache: %v", err)
	}
	if _, err := s.catalogSvc.ListCategories(ctx); err != nil {
		log.Printf("WARNING: Failed to refresh categories cache: %v", err)
	}
}

func (s *CronScheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
