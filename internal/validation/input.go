package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ignatzorin/studio-backend/internal/models"
)

// Константы валидации
const (
	MinQuoteDescriptionLength = 10
	MaxQuoteDescriptionLength = 5000
	MaxBudgetLength           = 100
	MinCatalogTitleLength     = 3
	MaxCatalogTitleLength     = 200
	MaxCatalogDescription     = 2000
	MaxExternalLinkLength     = 500
	MaxTechnologiesCount      = 20
)

// DeadlineLayout — формат даты дедлайна в форме заявки.
const DeadlineLayout = "2006-01-02"

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateProjectType проверяет тип проекта из формы заявки.
func ValidateProjectType(projectType string) error {
	if projectType == "" {
		return fmt.Errorf("тип проекта обязателен")
	}
	if _, ok := models.ValidProjectTypes[projectType]; !ok {
		return fmt.Errorf("тип проекта должен быть website, app, ecommerce или other")
	}
	return nil
}

// ValidateQuoteDescription проверяет описание проекта.
func ValidateQuoteDescription(description string) error {
	if err := ValidateNonEmpty("описание проекта", description); err != nil {
		return err
	}
	return ValidateLength("описание проекта", strings.TrimSpace(description), MinQuoteDescriptionLength, MaxQuoteDescriptionLength)
}

// ValidateBudget проверяет бюджет. Бюджет — свободный текст
// ("R$ 5.000", "договорная"), числовой формат не навязывается.
func ValidateBudget(budget string) error {
	if err := ValidateNonEmpty("бюджет", budget); err != nil {
		return err
	}
	return ValidateLength("бюджет", strings.TrimSpace(budget), 0, MaxBudgetLength)
}

// ParseDeadline разбирает дату дедлайна из формы.
func ParseDeadline(deadline string) (time.Time, error) {
	if strings.TrimSpace(deadline) == "" {
		return time.Time{}, fmt.Errorf("дедлайн обязателен")
	}

	parsed, err := time.Parse(DeadlineLayout, deadline)
	if err != nil {
		return time.Time{}, fmt.Errorf("дедлайн должен быть датой в формате ГГГГ-ММ-ДД")
	}

	return parsed, nil
}

// ValidateQuoteStatus проверяет статус заявки.
func ValidateQuoteStatus(status string) error {
	if _, ok := models.ValidQuoteStatuses[status]; !ok {
		return fmt.Errorf("статус должен быть pending, in_progress, completed или cancelled")
	}
	return nil
}

// ValidateCatalogTitle проверяет заголовок услуги или проекта.
func ValidateCatalogTitle(title string) error {
	if err := ValidateNonEmpty("название", title); err != nil {
		return err
	}
	return ValidateLength("название", strings.TrimSpace(title), MinCatalogTitleLength, MaxCatalogTitleLength)
}

// ValidateExternalLink проверяет внешнюю ссылку.
func ValidateExternalLink(link *string) error {
	if link == nil || *link == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*link)
	if err := ValidateLength("ссылка", trimmed, 0, MaxExternalLinkLength); err != nil {
		return err
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}
	return nil
}

// ValidateTechnologies проверяет список технологий проекта.
func ValidateTechnologies(technologies []string) error {
	if len(technologies) > MaxTechnologiesCount {
		return fmt.Errorf("количество технологий не может превышать %d", MaxTechnologiesCount)
	}
	for _, tech := range technologies {
		if strings.TrimSpace(tech) == "" {
			return fmt.Errorf("технология не может быть пустой")
		}
	}
	return nil
}
