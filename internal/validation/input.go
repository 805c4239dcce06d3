package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Границы полей, совпадают с ограничениями схемы БД.
const (
	MinGigTitleLength       = 5
	MaxGigTitleLength       = 100
	MinGigDescriptionLength = 20
	MaxGigDescriptionLength = 2000
	MinBidMessageLength     = 10
	MaxBidMessageLength     = 1000
	MinNameLength           = 2
	MaxNameLength           = 50
	MinAmount               = 1
	MaxSearchLength         = 100
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки в символах, а не в байтах.
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

// ValidateRequiredText обрезает пробелы и проверяет обязательное текстовое поле.
func ValidateRequiredText(fieldName, value string, min, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s обязательно", fieldName)
	}
	if err := ValidateLength(fieldName, value, min, max); err != nil {
		return "", err
	}
	return value, nil
}

// ValidateGigTitle проверяет заголовок заказа.
func ValidateGigTitle(title string) (string, error) {
	return ValidateRequiredText("заголовок", title, MinGigTitleLength, MaxGigTitleLength)
}

// ValidateGigDescription проверяет описание заказа.
func ValidateGigDescription(description string) (string, error) {
	return ValidateRequiredText("описание", description, MinGigDescriptionLength, MaxGigDescriptionLength)
}

// ValidateBidMessage проверяет текст отклика.
func ValidateBidMessage(message string) (string, error) {
	return ValidateRequiredText("сообщение", message, MinBidMessageLength, MaxBidMessageLength)
}

// ValidateAmount проверяет бюджет или цену: целое число от 1.
func ValidateAmount(fieldName string, amount int64) error {
	if amount < MinAmount {
		return fmt.Errorf("%s должен быть не менее %d", fieldName, MinAmount)
	}
	return nil
}

// ValidateName проверяет отображаемое имя пользователя.
func ValidateName(name string) (string, error) {
	return ValidateRequiredText("имя", name, MinNameLength, MaxNameLength)
}

// NormalizeSearch обрезает поисковую строку до допустимой длины.
func NormalizeSearch(search string) string {
	search = strings.TrimSpace(search)
	if utf8.RuneCountInString(search) > MaxSearchLength {
		search = string([]rune(search)[:MaxSearchLength])
	}
	return search
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}
