package dto

// SubmitQuoteRequest — форма подачи заявки на расчёт стоимости.
// Дедлайн передаётся строкой в формате ГГГГ-ММ-ДД, как в форме сайта.
type SubmitQuoteRequest struct {
	ProjectType string `json:"project_type" binding:"required"`
	Description string `json:"description" binding:"required"`
	Budget      string `json:"budget" binding:"required"`
	Deadline    string `json:"deadline" binding:"required"`
}

// UpdateQuoteStatusRequest — смена статуса заявки администратором.
type UpdateQuoteStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ServiceRequest — создание или обновление услуги каталога.
type ServiceRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Icon        string  `json:"icon"`
	Price       *string `json:"price"`
}

// ProjectRequest — создание или обновление проекта портфолио.
type ProjectRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	ImageID      *string  `json:"image_id"`
	Technologies []string `json:"technologies"`
	Link         *string  `json:"link"`
	GithubURL    *string  `json:"github_url"`
}
