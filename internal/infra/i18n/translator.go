package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"event-access-platform/internal/domain"
)

//go:embed locales
var LocalesFS embed.FS

// Translator maps message keys to user-facing text in one language.
type Translator struct {
	translations map[string]string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("parse translation file: %w", err)
	}

	return &Translator{translations: translations}, nil
}

// T translates a message key, formatting args when present. Unknown keys
// fall through as themselves.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// UserMessage maps a domain error onto its localized, user-facing message.
// Validation errors get a specific message per kind; infrastructure errors
// collapse to a generic "try again" and never leak internals.
func (t *Translator) UserMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCoupon):
		return t.T("coupon.invalid")
	case errors.Is(err, domain.ErrCouponExhausted):
		return t.T("coupon.exhausted")
	case errors.Is(err, domain.ErrAlreadyPaid):
		return t.T("payment.already_paid")
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		return t.T("payment.not_completed")
	case errors.Is(err, domain.ErrEmailMismatch):
		return t.T("payment.email_mismatch")
	case errors.Is(err, domain.ErrNotAuthorized):
		return t.T("auth.not_authorized")
	default:
		return t.T("error.try_again")
	}
}
