package entity

// CategoryRefRequest - ссылка на категорию в запросе создания/обновления продукта
type CategoryRefRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Type string `json:"type" validate:"required,min=2,max=100"`
}

type CreateProductRequest struct {
	Name              string               `json:"name" validate:"required,min=2,max=200"`
	Price             float64              `json:"price" validate:"required,gt=0"`
	Description       string               `json:"description" validate:"required,min=5,max=2000"`
	AlcoholPercentage *float64             `json:"alcohol_percentage" validate:"omitempty,gte=0,lte=100"`
	Ingredients       []string             `json:"ingredients" validate:"required,min=1,dive,min=1"`
	Categories        []CategoryRefRequest `json:"categories" validate:"required,min=1,dive"`
	Images            []string             `json:"images" validate:"omitempty,dive,url"`
}

// UpdateProductRequest - частичное обновление; nil-поле означает "не трогать".
// Для images различаются "поле отсутствует" (nil) и "пустой массив" (удалить все)
type UpdateProductRequest struct {
	Name              *string               `json:"name" validate:"omitempty,min=2,max=200"`
	Price             *float64              `json:"price" validate:"omitempty,gt=0"`
	Description       *string               `json:"description" validate:"omitempty,min=5,max=2000"`
	AlcoholPercentage *float64              `json:"alcohol_percentage" validate:"omitempty,gte=0,lte=100"`
	Ingredients       *[]string             `json:"ingredients" validate:"omitempty,dive,min=1"`
	Categories        *[]CategoryRefRequest `json:"categories" validate:"omitempty,dive"`
	Images            *[]string             `json:"images" validate:"omitempty,dive,url"`
}

type SetProductStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ApplicabilityRequest - привязка промо-акции к категории, продукту или типу категорий
type ApplicabilityRequest struct {
	CategoryID   *string `json:"category_id" validate:"omitempty,uuid"`
	ProductID    *string `json:"product_id" validate:"omitempty,uuid"`
	CategoryType *string `json:"category_type" validate:"omitempty,min=2,max=100"`
}

type CreatePromotionRequest struct {
	Title         string                 `json:"title" validate:"required,min=2,max=200"`
	Description   string                 `json:"description" validate:"omitempty,max=2000"`
	ImageURL      string                 `json:"image_url" validate:"omitempty,url"`
	ValidFrom     *string                `json:"valid_from" validate:"omitempty,datetime=2006-01-02"`
	ValidTo       *string                `json:"valid_to" validate:"omitempty,datetime=2006-01-02"`
	StartTime     *string                `json:"start_time" validate:"omitempty,datetime=15:04:05"`
	EndTime       *string                `json:"end_time" validate:"omitempty,datetime=15:04:05"`
	DaysOfWeek    []int                  `json:"days_of_week" validate:"omitempty,dive,gte=0,lte=6"`
	IsActive      *bool                  `json:"is_active"`
	IsPriority    *bool                  `json:"is_priority"`
	Applicability []ApplicabilityRequest `json:"applicability" validate:"omitempty,dive"`
}

type UpdatePromotionRequest struct {
	Title         *string                 `json:"title" validate:"omitempty,min=2,max=200"`
	Description   *string                 `json:"description" validate:"omitempty,max=2000"`
	ImageURL      *string                 `json:"image_url" validate:"omitempty,url"`
	ValidFrom     *string                 `json:"valid_from" validate:"omitempty,datetime=2006-01-02"`
	ValidTo       *string                 `json:"valid_to" validate:"omitempty,datetime=2006-01-02"`
	StartTime     *string                 `json:"start_time" validate:"omitempty,datetime=15:04:05"`
	EndTime       *string                 `json:"end_time" validate:"omitempty,datetime=15:04:05"`
	DaysOfWeek    *[]int                  `json:"days_of_week" validate:"omitempty,dive,gte=0,lte=6"`
	IsActive      *bool                   `json:"is_active"`
	IsPriority    *bool                   `json:"is_priority"`
	Applicability *[]ApplicabilityRequest `json:"applicability" validate:"omitempty,dive"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// QuotaErrorResponse - ответ на отклонение записи quota guard-ом
// Содержит названия блокирующих промо-акций для обратной связи оператору
type QuotaErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Blocking []string `json:"blocking,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type MenuListResponse struct {
	Products []ProductDetail `json:"products"`
	Total    int             `json:"total"`
}

type PromotionListResponse struct {
	Promotions []Promotion `json:"promotions"`
	Total      int         `json:"total"`
}

type IngredientListResponse struct {
	Ingredients []Ingredient `json:"ingredients"`
	Total       int          `json:"total"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}
