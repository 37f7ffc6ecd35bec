package models

import "time"

// Category is one label of the closed set used to bucket transactions.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategorySalary        Category = "Salary"
	CategoryInvestment    Category = "Investment"
	CategoryEducation     Category = "Education"
	CategoryRent          Category = "Rent"
	CategoryOther         Category = "Other"
)

// TxType is the direction of a transaction.
type TxType string

const (
	TypeIncome  TxType = "income"
	TypeExpense TxType = "expense"
)

// ParseTxType accepts "income" or "expense" in any case.
func ParseTxType(s string) (TxType, bool) {
	switch TxType(toLowerASCII(s)) {
	case TypeIncome:
		return TypeIncome, true
	case TypeExpense:
		return TypeExpense, true
	}
	return "", false
}

// DocumentKind tells which parser an uploaded document goes through.
type DocumentKind string

const (
	KindReceipt DocumentKind = "receipt"
	KindLedger  DocumentKind = "ledger"
)

// ExtractedFields is the result of reading a single receipt.
// A nil Amount means no monetary value was found.
type ExtractedFields struct {
	Amount   *float64 `json:"amount"`
	Category Category `json:"category"`
}

// HasAmount reports whether an amount was detected.
func (f ExtractedFields) HasAmount() bool {
	return f.Amount != nil
}

// LedgerLine is one data row parsed from a ledger PDF.
type LedgerLine struct {
	Date     string   `json:"date"` // YYYY-MM-DD
	Note     string   `json:"note"`
	Amount   float64  `json:"amount"`
	Type     TxType   `json:"type"`
	Category Category `json:"category"`
}

// Transaction is a stored income or expense entry owned by a user.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	Type      TxType    `json:"type"`
	Category  Category  `json:"category"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// FromLedgerLine converts a parsed ledger row into a transaction ready to store.
func FromLedgerLine(l LedgerLine) Transaction {
	return Transaction{
		Amount:   l.Amount,
		Type:     l.Type,
		Category: l.Category,
		Date:     l.Date,
		Note:     l.Note,
	}
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Type  TxType
	Start string
	End   string
	Page  int
	Limit int
}

// TransactionPage is one page of a filtered listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
}

func toLowerASCII(s string) string {
	b := make([]byte, len(s))
	for i := range s {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
