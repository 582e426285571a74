// Package normalizer maps raw table rows into canonical contribution and expenditure records.
package normalizer

// Kind distinguishes the two record families.
type Kind string

const (
	KindContribution Kind = "contribution"
	KindExpenditure  Kind = "expenditure"
)

// ContributionVariant is the sub-case a contribution row belongs to.
type ContributionVariant string

const (
	// ContributionIndividual rows name a person (or the candidate) in contributor_name.
	ContributionIndividual ContributionVariant = "individual"
	// ContributionOrganization rows name the contributor in organization_name.
	ContributionOrganization ContributionVariant = "organization"
	// ContributionUnauthorized rows carry a business plus a separate address column.
	ContributionUnauthorized ContributionVariant = "unauthorized"
)

// ExpenditureVariant is the sub-case an expenditure row belongs to.
type ExpenditureVariant string

const (
	ExpenditureRefund    ExpenditureVariant = "refund"
	ExpenditureTreasury  ExpenditureVariant = "treasury"
	ExpenditureEquipment ExpenditureVariant = "equipment"
	ExpenditureStandard  ExpenditureVariant = "standard"
)

// Record is a normalized Contribution or Expenditure.
type Record interface {
	Kind() Kind
	// Line returns the row's line number within its schedule run.
	Line() int
	// Identity returns the normalized name-and-address key.
	Identity() string
	isRecord()
}

// Name is a decomposed personal name. Last may carry a suffix such as "Jr.".
type Name struct {
	First  string `json:"first"`
	Middle string `json:"middle"`
	Last   string `json:"last"`
}

// Address is a decomposed postal address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Contribution is a normalized receipt.
type Contribution struct {
	Schedule                    string              `json:"schedule"`
	Variant                     ContributionVariant `json:"variant"`
	LineNumber                  int                 `json:"line_number"`
	CommitteeName               string              `json:"committee_name"`
	ContributorName             string              `json:"contributor_name"`
	ContributorAddress          string              `json:"contributor_address"`
	Name                        *Name               `json:"name,omitempty"`
	Address                     *Address            `json:"address,omitempty"`
	ContributorType             string              `json:"contributor_type"`
	ContributionType            string              `json:"contribution_type"`
	ContributorOrganizationName string              `json:"contributor_organization_name"`
	Occupation                  string              `json:"occupation,omitempty"`
	EmployerName                string              `json:"employer_name,omitempty"`
	EmployerAddress             string              `json:"employer_address,omitempty"`
	ReceiptDate                 string              `json:"receipt_date"`
	Amount                      Amount              `json:"amount"`
	Normalized                  string              `json:"normalized"`
	// Extra holds header-declared fields with no canonical slot.
	Extra map[string]string `json:"extra,omitempty"`
}

func (c *Contribution) Kind() Kind       { return KindContribution }
func (c *Contribution) Line() int        { return c.LineNumber }
func (c *Contribution) Identity() string { return c.Normalized }
func (c *Contribution) isRecord()        {}

// Expenditure is a normalized disbursement.
type Expenditure struct {
	Schedule             string             `json:"schedule"`
	Variant              ExpenditureVariant `json:"variant"`
	LineNumber           int                `json:"line_number"`
	CommitteeName        string             `json:"committee_name"`
	PayeeName            string             `json:"payee_name"`
	PayeeAddress         string             `json:"payee_address"`
	Address              *Address           `json:"address,omitempty"`
	PurposeOfExpenditure string             `json:"purpose_of_expenditure"`
	PaymentDate          string             `json:"payment_date"`
	Amount               Amount             `json:"amount"`
	Normalized           string             `json:"normalized"`
	Extra                map[string]string  `json:"extra,omitempty"`
}

func (e *Expenditure) Kind() Kind       { return KindExpenditure }
func (e *Expenditure) Line() int        { return e.LineNumber }
func (e *Expenditure) Identity() string { return e.Normalized }
func (e *Expenditure) isRecord()        {}
