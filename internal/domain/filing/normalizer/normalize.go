package normalizer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/layout"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/rows"
)

// TreasuryPayee is the payee recorded for payments to the DC Treasury.
const TreasuryPayee = "DC Treasury"

var (
	stateDashZip = regexp.MustCompile(`\b([A-Z]{2})-(\d{5})`)
	repeatComma  = regexp.MustCompile(`,(?:\s*,)+`)
)

// ClassifyContribution picks the contribution sub-variant from the fields the row declares.
func ClassifyContribution(row *rows.Row) (ContributionVariant, error) {
	hasAddress := row.Has("address")
	hasOrganization := row.Has("organization_name")

	switch {
	case hasAddress && hasOrganization:
		return "", common.Errorf(common.KindUnknownScheduleType,
			"contribution row declares both address and organization_name").
			WithRaw(strings.Join(row.Raw, "\n"))
	case hasAddress:
		return ContributionUnauthorized, nil
	case hasOrganization:
		return ContributionOrganization, nil
	default:
		return ContributionIndividual, nil
	}
}

// ClassifyExpenditure picks the expenditure sub-variant. A refund wins over a treasury
// payment, which wins over equipment.
func ClassifyExpenditure(row *rows.Row) ExpenditureVariant {
	switch {
	case row.Has("refund_date"):
		return ExpenditureRefund
	case row.Has("mode_of_payment"):
		return ExpenditureTreasury
	case row.Has("equipment_short_description"):
		return ExpenditureEquipment
	default:
		return ExpenditureStandard
	}
}

// Normalize maps a raw row from a schedule into its canonical record. A row that declares
// receipt_date is a contribution; any other row is an expenditure.
func Normalize(code string, row *rows.Row) (Record, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || (code[0] != 'A' && code[0] != 'B') {
		return nil, &common.ParseError{
			Kind:     common.KindUnknownScheduleType,
			Schedule: code,
			Message:  "no layout rule for schedule",
			RawData:  strings.Join(row.Raw, "\n"),
		}
	}

	line, err := lineNumber(row)
	if err != nil {
		return nil, common.Locate(err, 0, code)
	}

	var rec Record
	if row.Has("receipt_date") {
		rec, err = normalizeContribution(code, line, row)
	} else {
		rec, err = normalizeExpenditure(code, line, row)
	}
	if err != nil {
		var pe *common.ParseError
		if errors.As(err, &pe) && pe.Line == 0 {
			pe.Line = line
		}
		return nil, common.Locate(err, 0, code)
	}
	return rec, nil
}

func lineNumber(row *rows.Row) (int, error) {
	raw := strings.TrimSpace(row.Get(layout.LineNumberField))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, common.Errorf(common.KindMissingLineNumber, "line number is not a positive integer").
			WithField(layout.LineNumberField).
			WithRaw(raw)
	}
	return n, nil
}

func normalizeContribution(code string, line int, row *rows.Row) (*Contribution, error) {
	variant, err := ClassifyContribution(row)
	if err != nil {
		return nil, err
	}

	c := &Contribution{
		Schedule:         code,
		Variant:          variant,
		LineNumber:       line,
		ContributorType:  "Individual",
		ContributionType: row.Get("mode_of_payment"),
		ReceiptDate:      FixDate(row.Get("receipt_date")),
		Amount:           FixAmount(row.Get("amount")),
		Occupation:       row.Get("occupation"),
	}
	if row.Has("relationship") {
		c.ContributorType = "Candidate"
	}

	consumed := []string{
		layout.LineNumberField, layout.AmountField, "receipt_date", "mode_of_payment",
		"relationship", "occupation", "contributor_organization_name",
	}
	var name, address string

	switch variant {
	case ContributionUnauthorized:
		business, businessAddress := splitNameBlock(row.Get("business"), row.Get("business_address"))
		name = joinNonEmpty(", ", business, collapseLines(businessAddress))
		address = row.Get("address")
		consumed = append(consumed, "business", "business_address", "address")

	case ContributionOrganization:
		name, address = splitNameBlock(row.Get("organization_name"), row.Get("organization_address"))
		consumed = append(consumed, "organization_name", "organization_address", "phone_number", "phone")

	case ContributionIndividual:
		name, address = splitNameBlock(row.Get("contributor_name"), row.Get("contributor_address"))
		parsed, err := ParseName(name)
		if err != nil {
			return nil, err
		}
		c.Name = &parsed

		employer, employerAddress := splitNameBlock(row.Get("employer_name"), row.Get("employer_address"))
		c.EmployerName = employer
		c.EmployerAddress = normalizeEmployerAddress(employerAddress)
		consumed = append(consumed, "contributor_name", "contributor_address",
			"employer_name", "employer_address", "cumulative_amount")
	}

	if strings.TrimSpace(address) != "" {
		parsed, err := ParseAddress(address)
		if err != nil {
			return nil, err
		}
		c.Address = &parsed
	}

	c.ContributorName = name
	c.ContributorAddress = collapseLines(address)
	c.Normalized = NormalizeNameAndAddress(c.ContributorName, c.ContributorAddress)
	c.Extra = extraFields(row, consumed)
	return c, nil
}

func normalizeExpenditure(code string, line int, row *rows.Row) (*Expenditure, error) {
	variant := ClassifyExpenditure(row)
	e := &Expenditure{
		Schedule:    code,
		Variant:     variant,
		LineNumber:  line,
		PaymentDate: FixDate(row.Get("date")),
		Amount:      FixAmount(row.Get("amount")),
	}

	consumed := []string{layout.LineNumberField, layout.AmountField, "date"}
	var name, address string

	switch variant {
	case ExpenditureRefund:
		e.PurposeOfExpenditure = "Refund"
		e.PaymentDate = FixDate(row.Get("refund_date"))
		if row.Has("individual") {
			name, address = splitNameBlock(row.Get("individual"), row.Get("payee_address"))
		} else {
			name, address = splitNameBlock(row.Get("contributor_name"), row.Get("contributor_address"))
		}
		consumed = append(consumed, "refund_date", "individual", "payee_address",
			"contributor_name", "contributor_address", "contribution_date", "reason", "mode_of_payment")

	case ExpenditureTreasury:
		name = TreasuryPayee
		e.PurposeOfExpenditure = row.Get("reason")
		consumed = append(consumed, "reason")

	case ExpenditureEquipment:
		e.PurposeOfExpenditure = row.Get("equipment_short_description")
		key := firstDeclared(row, "source", "source_name")
		name, address = splitNameBlock(row.Get(key), row.Get("source_address"))
		consumed = append(consumed, "equipment_short_description", "source", "source_name", "source_address")

	case ExpenditureStandard:
		key := firstDeclared(row, "business", "business_name")
		name, address = splitNameBlock(row.Get(key), row.Get("business_address"))
		e.PurposeOfExpenditure = row.Get("purpose_of_expenditure")
		consumed = append(consumed, "business", "business_name", "business_address", "purpose_of_expenditure")
	}

	if strings.TrimSpace(address) != "" {
		parsed, err := ParseAddress(address)
		if err != nil {
			return nil, err
		}
		e.Address = &parsed
	}

	e.PayeeName = name
	e.PayeeAddress = collapseLines(address)
	e.Normalized = NormalizeNameAndAddress(e.PayeeName, e.PayeeAddress)
	e.Extra = extraFields(row, consumed)
	return e, nil
}

// normalizeEmployerAddress flattens a wrapped employer address onto one line.
func normalizeEmployerAddress(s string) string {
	s = collapseLines(s)
	s = repeatComma.ReplaceAllString(s, ",")
	s = stateDashZip.ReplaceAllString(s, "$1 $2")
	return strings.TrimSpace(s)
}

func firstDeclared(row *rows.Row, keys ...string) string {
	for _, k := range keys {
		if row.Has(k) {
			return k
		}
	}
	return keys[0]
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func extraFields(row *rows.Row, consumed []string) map[string]string {
	skip := make(map[string]bool, len(consumed))
	for _, k := range consumed {
		skip[k] = true
	}
	var extra map[string]string
	for _, k := range row.Keys() {
		if skip[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = row.Get(k)
	}
	return extra
}
