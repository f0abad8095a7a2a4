package models

// QuoteStatus константы статусов заявок.
// Переходы между статусами не ограничены: админ может вернуть
// завершённую заявку обратно в pending.
const (
	QuoteStatusPending    = "pending"
	QuoteStatusInProgress = "in_progress"
	QuoteStatusCompleted  = "completed"
	QuoteStatusCancelled  = "cancelled"
)

// ProjectType константы типов проектов в форме заявки.
const (
	ProjectTypeWebsite   = "website"
	ProjectTypeApp       = "app"
	ProjectTypeEcommerce = "ecommerce"
	ProjectTypeOther     = "other"
)

// Role константы ролей пользователей.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// ValidQuoteStatuses список валидных статусов заявок.
var ValidQuoteStatuses = map[string]struct{}{
	QuoteStatusPending:    {},
	QuoteStatusInProgress: {},
	QuoteStatusCompleted:  {},
	QuoteStatusCancelled:  {},
}

// ValidProjectTypes список валидных типов проектов.
var ValidProjectTypes = map[string]struct{}{
	ProjectTypeWebsite:   {},
	ProjectTypeApp:       {},
	ProjectTypeEcommerce: {},
	ProjectTypeOther:     {},
}

// ValidRoles список валидных ролей.
var ValidRoles = map[string]struct{}{
	RoleClient: {},
	RoleAdmin:  {},
}
