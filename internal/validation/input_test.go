package validation

import (
	"strings"
	"testing"
	"time"
)

func TestValidateProjectType(t *testing.T) {
	for _, valid := range []string{"website", "app", "ecommerce", "other"} {
		if err := ValidateProjectType(valid); err != nil {
			t.Fatalf("тип %s должен быть валиден: %v", valid, err)
		}
	}

	if err := ValidateProjectType(""); err == nil {
		t.Fatalf("пустой тип должен быть ошибкой")
	}
	if err := ValidateProjectType("blog"); err == nil {
		t.Fatalf("неизвестный тип должен быть ошибкой")
	}
}

func TestValidateQuoteDescription(t *testing.T) {
	if err := ValidateQuoteDescription("Нужен сайт для кофейни с онлайн-меню"); err != nil {
		t.Fatalf("описание должно быть валидным: %v", err)
	}

	if err := ValidateQuoteDescription("  "); err == nil {
		t.Fatalf("пустое описание должно быть ошибкой")
	}
	if err := ValidateQuoteDescription("короче"); err == nil {
		t.Fatalf("слишком короткое описание должно быть ошибкой")
	}
	if err := ValidateQuoteDescription(strings.Repeat("ю", MaxQuoteDescriptionLength+1)); err == nil {
		t.Fatalf("слишком длинное описание должно быть ошибкой")
	}
}

func TestValidateBudget(t *testing.T) {
	// Бюджет — свободный текст, формат не навязывается.
	for _, valid := range []string{"R$ 5.000", "договорная", "10000"} {
		if err := ValidateBudget(valid); err != nil {
			t.Fatalf("бюджет %q должен быть валиден: %v", valid, err)
		}
	}

	if err := ValidateBudget(""); err == nil {
		t.Fatalf("пустой бюджет должен быть ошибкой")
	}
	if err := ValidateBudget(strings.Repeat("9", MaxBudgetLength+1)); err == nil {
		t.Fatalf("слишком длинный бюджет должен быть ошибкой")
	}
}

func TestParseDeadline(t *testing.T) {
	parsed, err := ParseDeadline("2026-12-01")
	if err != nil {
		t.Fatalf("дата должна разбираться: %v", err)
	}
	if parsed != time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("неверная дата: %v", parsed)
	}

	for _, invalid := range []string{"", "01.12.2026", "2026-13-01", "завтра"} {
		if _, err := ParseDeadline(invalid); err == nil {
			t.Fatalf("дедлайн %q должен быть ошибкой", invalid)
		}
	}
}

func TestValidateQuoteStatus(t *testing.T) {
	for _, valid := range []string{"pending", "in_progress", "completed", "cancelled"} {
		if err := ValidateQuoteStatus(valid); err != nil {
			t.Fatalf("статус %s должен быть валиден: %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "done", "PENDING"} {
		if err := ValidateQuoteStatus(invalid); err == nil {
			t.Fatalf("статус %q должен быть ошибкой", invalid)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("user@example.com"); err != nil {
		t.Fatalf("email должен быть валиден: %v", err)
	}

	for _, invalid := range []string{"", "user", "user@", "@example.com", "user@local"} {
		if err := ValidateEmail(invalid); err == nil {
			t.Fatalf("email %q должен быть ошибкой", invalid)
		}
	}
}

func TestValidateExternalLink(t *testing.T) {
	link := "https://example.com/project"
	if err := ValidateExternalLink(&link); err != nil {
		t.Fatalf("ссылка должна быть валидна: %v", err)
	}

	if err := ValidateExternalLink(nil); err != nil {
		t.Fatalf("отсутствующая ссылка допустима: %v", err)
	}

	bad := "ftp://example.com"
	if err := ValidateExternalLink(&bad); err == nil {
		t.Fatalf("ссылка без http должна быть ошибкой")
	}
}

func TestValidateTechnologies(t *testing.T) {
	if err := ValidateTechnologies([]string{"Go", "PostgreSQL"}); err != nil {
		t.Fatalf("список технологий должен быть валиден: %v", err)
	}

	if err := ValidateTechnologies([]string{"Go", " "}); err == nil {
		t.Fatalf("пустая технология должна быть ошибкой")
	}

	tooMany := make([]string, MaxTechnologiesCount+1)
	for i := range tooMany {
		tooMany[i] = "tech"
	}
	if err := ValidateTechnologies(tooMany); err == nil {
		t.Fatalf("слишком длинный список должен быть ошибкой")
	}
}
