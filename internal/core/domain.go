package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Planned   TransactionStatus = "planned"
	Completed TransactionStatus = "completed"

	NoRecurrence Recurrence = "none"
	Monthly      Recurrence = "monthly"
	Yearly       Recurrence = "yearly"

	PIX    PaymentMethod = "pix"
	Credit PaymentMethod = "credit"
	Debit  PaymentMethod = "debit"
	Cash   PaymentMethod = "cash"
	Other  PaymentMethod = "other"
)

// MaxDescriptionLen is the longest transaction description, in characters.
const MaxDescriptionLen = 200

type (
	TransactionType   string
	TransactionStatus string
	Recurrence        string
	PaymentMethod     string

	Money struct {
		Cents int64
	}

	// Transaction is a single money movement.
	Transaction struct {
		ID             string
		UserID         string
		CreatedAt      time.Time
		Type           TransactionType
		Amount         Money
		Date           Date
		Description    string
		Payer          string
		Category       string
		Status         TransactionStatus
		Recurrence     Recurrence
		PaymentMethod  PaymentMethod
		PaymentDetails string
		CardID         string
		Schedule       Schedule
	}

	// CreditCard has no balance field; the open statement is always derived.
	CreditCard struct {
		ID         string
		UserID     string
		CreatedAt  time.Time
		BankName   string
		HolderName string
		Limit      Money
		ClosingDay int
		DueDay     int
	}

	Goal struct {
		ID            string
		UserID        string
		CreatedAt     time.Time
		Name          string
		TargetAmount  Money
		InitialAmount Money
		CurrentAmount Money
		StartDate     Date
		EndDate       Date
	}

	Category struct {
		ID        string
		UserID    string
		CreatedAt time.Time
		Name      string
		Type      TransactionType
	}
)

// Schedule tells whether a transaction stands alone or is one sibling of an
// installment group. The only implementations are Standalone and Installment.
type Schedule interface {
	schedule()
}

// Standalone marks a transaction that is not part of an installment group.
type Standalone struct{}

// Installment links the sibling rows of a split purchase.
type Installment struct {
	Current  int
	Total    int
	ParentID string
}

func (Standalone) schedule()  {}
func (Installment) schedule() {}

// InstallmentGroup returns the installment descriptor when t belongs to a group.
func (t Transaction) InstallmentGroup() (Installment, bool) {
	switch s := t.Schedule.(type) {
	case Installment:
		return s, true
	case *Installment:
		if s != nil {
			return *s, true
		}
	}
	return Installment{}, false
}

// BaseDescription strips the " (i/n)" suffix added to installment siblings.
func (t Transaction) BaseDescription() string {
	if _, ok := t.InstallmentGroup(); !ok {
		return t.Description
	}
	if i := strings.LastIndex(t.Description, " ("); i > 0 {
		return t.Description[:i]
	}
	return t.Description
}

// Signed returns the amount with income positive and expense negative.
func (t Transaction) Signed() int64 {
	if t.Type == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

func (tt TransactionType) Valid() bool {
	return tt == Income || tt == Expense
}

func (s TransactionStatus) Valid() bool {
	return s == Planned || s == Completed
}

func (r Recurrence) Valid() bool {
	switch r {
	case NoRecurrence, Monthly, Yearly:
		return true
	}
	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PIX, Credit, Debit, Cash, Other:
		return true
	}
	return false
}

// Label returns the Portuguese label used in user-facing messages.
func (tt TransactionType) Label() string {
	if tt == Income {
		return "Receita"
	}
	return "Despesa"
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Normalize fills optional enum fields with their defaults.
func (t *Transaction) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
	t.Payer = strings.TrimSpace(t.Payer)
	t.Category = strings.TrimSpace(t.Category)
	if t.Recurrence == "" {
		t.Recurrence = NoRecurrence
	}
	if t.PaymentMethod == "" {
		t.PaymentMethod = Other
	}
	if t.PaymentMethod != Credit {
		t.CardID = ""
	}
	if t.Schedule == nil {
		t.Schedule = Standalone{}
	}
	if s, ok := t.Schedule.(*Installment); ok && s != nil {
		t.Schedule = *s
	}
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("invalid transaction type %q", t.Type)}
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Message: "description too long (max 200 characters)"}
	}
	if strings.TrimSpace(t.Payer) == "" {
		return ErrEmptyPayer
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", t.Status)}
	}
	if t.Recurrence != "" && !t.Recurrence.Valid() {
		return &ValidationError{Field: "recurrence", Message: fmt.Sprintf("invalid recurrence %q", t.Recurrence)}
	}
	if !t.PaymentMethod.Valid() {
		return &ValidationError{Field: "payment_method", Message: fmt.Sprintf("invalid payment method %q", t.PaymentMethod)}
	}
	if t.PaymentMethod == Credit && strings.TrimSpace(t.CardID) == "" {
		return ErrMissingCard
	}
	if inst, ok := t.InstallmentGroup(); ok {
		return inst.Validate()
	}
	return nil
}

func (i Installment) Validate() error {
	if i.Total < 1 || i.Current < 1 || i.Current > i.Total {
		return &ValidationError{Field: "installments", Message: fmt.Sprintf("inconsistent installment %d/%d", i.Current, i.Total)}
	}
	if strings.TrimSpace(i.ParentID) == "" {
		return &ValidationError{Field: "installments", Message: "missing parent id"}
	}
	return nil
}

// CheckReferences validates t against the entities it points to. A nil payers
// list skips the payer check.
func (t Transaction) CheckReferences(categories []Category, cards []CreditCard, payers []string) error {
	found := false
	for _, c := range categories {
		if c.Name != t.Category {
			continue
		}
		if c.Type == t.Type {
			found = true
			break
		}
	}
	if !found {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("no %s category named %q", t.Type, t.Category)}
	}

	if t.PaymentMethod == Credit {
		known := false
		for _, c := range cards {
			if c.ID == t.CardID {
				known = true
				break
			}
		}
		if !known {
			return &ValidationError{Field: "card_id", Message: fmt.Sprintf("unknown card %q", t.CardID)}
		}
	}

	if payers != nil {
		for _, p := range payers {
			if p == t.Payer {
				return nil
			}
		}
		return &ValidationError{Field: "payer", Message: fmt.Sprintf("unknown payer %q", t.Payer)}
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.BankName) == "" {
		return &ValidationError{Field: "bank_name", Message: "bank name is required"}
	}
	if strings.TrimSpace(c.HolderName) == "" {
		return &ValidationError{Field: "holder_name", Message: "holder name is required"}
	}
	if c.Limit.Cents <= 0 {
		return &ValidationError{Field: "limit", Message: "limit must be greater than zero"}
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return &ValidationError{Field: "closing_day", Message: "closing day must be between 1 and 31"}
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return &ValidationError{Field: "due_day", Message: "due day must be between 1 and 31"}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return &ValidationError{Field: "name", Message: "goal name is required"}
	}
	if g.TargetAmount.Cents <= 0 {
		return &ValidationError{Field: "target_amount", Message: "target must be greater than zero"}
	}
	if g.InitialAmount.Cents < 0 {
		return &ValidationError{Field: "initial_amount", Message: "initial amount cannot be negative"}
	}
	if g.CurrentAmount.Cents < 0 {
		return &ValidationError{Field: "current_amount", Message: "current amount cannot be negative"}
	}
	if err := g.StartDate.Validate(); err != nil {
		return &ValidationError{Field: "start_date", Message: err.Error()}
	}
	if err := g.EndDate.Validate(); err != nil {
		return &ValidationError{Field: "end_date", Message: err.Error()}
	}
	if g.EndDate.Before(g.StartDate.Time) {
		return &ValidationError{Field: "end_date", Message: "end date must not be before start date"}
	}
	return nil
}

// Progress returns the completion percentage of the goal.
func (g Goal) Progress() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	return float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "category name is required"}
	}
	if !c.Type.Valid() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("invalid category type %q", c.Type)}
	}
	return nil
}

// DefaultCategories is the seed set for a new household.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Alimentação", Type: Expense},
		{Name: "Moradia", Type: Expense},
		{Name: "Transporte", Type: Expense},
		{Name: "Lazer", Type: Expense},
		{Name: "Assinatura", Type: Expense},
		{Name: "Pagamento de Fatura", Type: Expense},
		{Name: "Salário", Type: Income},
		{Name: "Freelancer", Type: Income},
		{Name: "Investimento", Type: Income},
	}
}
