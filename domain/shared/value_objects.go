package shared

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultCurrency is used for material prices and order totals.
const DefaultCurrency = "RUB"

// Money is an amount in the smallest currency unit.
type Money struct {
	amount   int64
	currency string
}

func NewMoney(amount int64, currency string) *Money {
	return &Money{
		amount:   amount,
		currency: currency,
	}
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, errors.New("cannot add money with different currencies")
	}
	if (other.amount > 0 && m.amount > math.MaxInt64-other.amount) ||
		(other.amount < 0 && m.amount < math.MinInt64-other.amount) {
		return nil, errors.New("money overflow")
	}

	return &Money{
		amount:   m.amount + other.amount,
		currency: m.currency,
	}, nil
}

// Multiply returns m * quantity, guarding against overflow.
func (m Money) Multiply(quantity int) (*Money, error) {
	if quantity != 0 && (m.amount > math.MaxInt64/int64(abs(quantity)) || m.amount < math.MinInt64/int64(abs(quantity))) {
		return nil, errors.New("money overflow")
	}
	return &Money{
		amount:   m.amount * int64(quantity),
		currency: m.currency,
	}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ============================================================================
// Contact details shared by clients, workers and providers
// ============================================================================

var (
	phoneRegex    = regexp.MustCompile(`^(\+7[0-9]{10}|8[0-9]{10})$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRegex     = regexp.MustCompile(`^[а-яА-ЯёЁa-zA-Z-]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	nonDigits     = regexp.MustCompile(`[^0-9]`)
)

// MinPasswordLength applies to every account.
const MinPasswordLength = 6

// Phone is a Russian phone number stored as +7XXXXXXXXXX.
type Phone struct {
	value string
}

// NewPhone accepts +7XXXXXXXXXX or 8XXXXXXXXXX, ignoring spaces, dashes and brackets.
// An empty input yields the zero Phone.
func NewPhone(raw string) (Phone, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Phone{}, nil
	}

	compact := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(raw)
	if !phoneRegex.MatchString(compact) {
		return Phone{}, errors.New("phone must look like +7XXXXXXXXXX or 8XXXXXXXXXX")
	}
	return Phone{value: "+7" + PhoneDigits(compact)}, nil
}

// PhoneDigits keeps the last ten digits of any phone-like input.
func PhoneDigits(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) >= 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// NormalizePhone maps loosely formatted input to the stored form for lookups.
func NormalizePhone(raw string) string {
	digits := PhoneDigits(raw)
	if len(digits) != 10 {
		return ""
	}
	return "+7" + digits
}

func (p Phone) Value() string  { return p.value }
func (p Phone) IsZero() bool   { return p.value == "" }
func (p Phone) String() string { return p.value }

// RestorePhone rebuilds a stored value without validation.
func RestorePhone(value string) Phone { return Phone{value: value} }

// ValidateEmail checks an optional e-mail address and returns it lower-cased.
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", nil
	}
	if len(email) > 200 || !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// PersonName is a first/last/middle triple.
type PersonName struct {
	First  string
	Last   string
	Middle string
}

// Validate checks every present part; First is always required, Last only when lastRequired.
func (n PersonName) Validate(lastRequired bool) (field string, err error) {
	if n.First == "" {
		return "first", errors.New("cannot be empty")
	}
	if lastRequired && n.Last == "" {
		return "last", errors.New("cannot be empty")
	}
	for _, part := range []struct{ field, value string }{
		{"first", n.First},
		{"last", n.Last},
		{"middle", n.Middle},
	} {
		if part.value == "" {
			continue
		}
		if utf8.RuneCountInString(part.value) > 100 || !nameRegex.MatchString(part.value) {
			return part.field, errors.New("may contain only letters and hyphens")
		}
	}
	return "", nil
}

// Full joins the present parts as "Last First Middle".
func (n PersonName) Full() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.Last, n.First, n.Middle} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 100 {
		return errors.New("must be between 3 and 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("may contain only latin letters, digits, '_', '.' and '-'")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("must be at least 6 characters")
	}
	return nil
}
