package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	usDate         = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	currencyAmount = regexp.MustCompile(`^\$?(?:\d[\d,]*)?(?:\.\d+)?$`)
)

// FixDate rewrites MM/DD/YYYY as YYYY-MM-DD. Anything else, including the empty string,
// is returned unchanged.
func FixDate(s string) string {
	s = strings.TrimSpace(s)
	m := usDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[1]), pad2(m[2]))
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Amount is a monetary cell. Numeric amounts carry their decimal value; anything the
// currency pattern does not accept (e.g. "N/A") is kept as text.
type Amount struct {
	Value   decimal.Decimal
	Text    string
	Numeric bool
}

// FixAmount converts a currency string such as "$1,234.50" into a numeric Amount.
func FixAmount(s string) Amount {
	s = strings.TrimSpace(s)
	a := Amount{Text: s}
	if s == "" || !strings.ContainsAny(s, "0123456789") || !currencyAmount.MatchString(s) {
		return a
	}
	clean := strings.NewReplacer("$", "", ",", "").Replace(s)
	v, err := decimal.NewFromString(clean)
	if err != nil {
		return a
	}
	a.Value = v
	a.Numeric = true
	return a
}

// NumericAmount builds a numeric Amount from a decimal value.
func NumericAmount(v decimal.Decimal) Amount {
	return Amount{Value: v, Text: v.StringFixed(2), Numeric: true}
}

// Cents returns the amount in cents, rounded half away from zero.
func (a Amount) Cents() (int64, bool) {
	if !a.Numeric {
		return 0, false
	}
	return a.Value.Shift(2).Round(0).IntPart(), true
}

func (a Amount) String() string {
	if a.Numeric {
		return a.Value.String()
	}
	return a.Text
}

// MarshalJSON writes a JSON number for numeric amounts and a string otherwise.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Numeric {
		return []byte(a.Value.String()), nil
	}
	return json.Marshal(a.Text)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount{Text: s}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	v, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = NumericAmount(v)
	return nil
}
