package http

import (
	"time"

	"flux/internal/core"
	"flux/internal/finance"
	"flux/internal/installment"
)

// Request bodies. Tags catch malformed input early; the ledger validates
// the resulting entities again.
type (
	transactionRequest struct {
		Type           string     `json:"type" validate:"required,oneof=income expense"`
		Amount         core.Money `json:"amount"`
		Date           core.Date  `json:"date"`
		Description    string     `json:"description" validate:"required,max=200"`
		Payer          string     `json:"payer" validate:"required"`
		Category       string     `json:"category" validate:"required"`
		Status         string     `json:"status" validate:"omitempty,oneof=planned completed"`
		Recurrence     string     `json:"recurrence" validate:"omitempty,oneof=none monthly yearly"`
		PaymentMethod  string     `json:"payment_method" validate:"omitempty,oneof=pix credit debit cash other"`
		PaymentDetails string     `json:"payment_details" validate:"max=200"`
		CardID         string     `json:"card_id" validate:"required_if=PaymentMethod credit"`
		// Installments above one splits the amount into a monthly plan.
		Installments int `json:"installments" validate:"omitempty,min=1,max=360"`
	}

	cardRequest struct {
		BankName   string     `json:"bank_name" validate:"required"`
		HolderName string     `json:"holder_name" validate:"required"`
		Limit      core.Money `json:"limit"`
		ClosingDay int        `json:"closing_day" validate:"required,min=1,max=31"`
		DueDay     int        `json:"due_day" validate:"required,min=1,max=31"`
	}

	goalRequest struct {
		Name          string     `json:"name" validate:"required"`
		TargetAmount  core.Money `json:"target_amount"`
		InitialAmount core.Money `json:"initial_amount"`
		CurrentAmount core.Money `json:"current_amount"`
		StartDate     core.Date  `json:"start_date"`
		EndDate       core.Date  `json:"end_date"`
	}

	categoryRequest struct {
		Name string `json:"name" validate:"required"`
		Type string `json:"type" validate:"required,oneof=income expense"`
	}

	profileRequest struct {
		UserName    string `json:"user_name" validate:"required"`
		PartnerName string `json:"partner_name"`
		Mode        string `json:"mode" validate:"required,oneof=individual couple"`
		Theme       string `json:"theme" validate:"required,oneof=dark light"`
	}

	monthRequest struct {
		Year  int `json:"year" validate:"required,min=1900,max=9999"`
		Month int `json:"month" validate:"required,min=1,max=12"`
	}

	previewRequest struct {
		Amount       core.Money `json:"amount"`
		Installments int        `json:"installments" validate:"required,min=1,max=360"`
		Date         core.Date  `json:"date"`
	}
)

func (req transactionRequest) toTransaction() core.Transaction {
	status := core.TransactionStatus(req.Status)
	if status == "" {
		status = core.Planned
	}
	return core.Transaction{
		Type:           core.TransactionType(req.Type),
		Amount:         req.Amount,
		Date:           req.Date,
		Description:    req.Description,
		Payer:          req.Payer,
		Category:       req.Category,
		Status:         status,
		Recurrence:     core.Recurrence(req.Recurrence),
		PaymentMethod:  core.PaymentMethod(req.PaymentMethod),
		PaymentDetails: req.PaymentDetails,
		CardID:         req.CardID,
	}
}

func (req cardRequest) toCard() core.CreditCard {
	return core.CreditCard{
		BankName:   req.BankName,
		HolderName: req.HolderName,
		Limit:      req.Limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}
}

func (req goalRequest) toGoal() core.Goal {
	return core.Goal{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		InitialAmount: req.InitialAmount,
		CurrentAmount: req.CurrentAmount,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
}

func (req categoryRequest) toCategory() core.Category {
	return core.Category{Name: req.Name, Type: core.TransactionType(req.Type)}
}

// Response bodies.
type (
	installmentJSON struct {
		Current  int    `json:"current"`
		Total    int    `json:"total"`
		ParentID string `json:"parent_id"`
	}

	transactionJSON struct {
		ID             string           `json:"id"`
		Type           string           `json:"type"`
		Amount         core.Money       `json:"amount"`
		Date           core.Date        `json:"date"`
		Description    string           `json:"description"`
		Payer          string           `json:"payer"`
		Category       string           `json:"category"`
		Status         string           `json:"status"`
		Recurrence     string           `json:"recurrence"`
		PaymentMethod  string           `json:"payment_method"`
		PaymentDetails string           `json:"payment_details,omitempty"`
		CardID         string           `json:"card_id,omitempty"`
		Installment    *installmentJSON `json:"installment,omitempty"`
		CreatedAt      time.Time        `json:"created_at"`
	}

	cardJSON struct {
		ID         string     `json:"id"`
		BankName   string     `json:"bank_name"`
		HolderName string     `json:"holder_name"`
		Limit      core.Money `json:"limit"`
		ClosingDay int        `json:"closing_day"`
		DueDay     int        `json:"due_day"`
		CreatedAt  time.Time  `json:"created_at"`
	}

	statementJSON struct {
		Card        cardJSON   `json:"card"`
		PeriodStart core.Date  `json:"period_start"`
		Total       core.Money `json:"total"`
		Available   core.Money `json:"available"`
	}

	goalJSON struct {
		ID            string     `json:"id"`
		Name          string     `json:"name"`
		TargetAmount  core.Money `json:"target_amount"`
		InitialAmount core.Money `json:"initial_amount"`
		CurrentAmount core.Money `json:"current_amount"`
		StartDate     core.Date  `json:"start_date"`
		EndDate       core.Date  `json:"end_date"`
		Progress      float64    `json:"progress"`
		CreatedAt     time.Time  `json:"created_at"`
	}

	categoryJSON struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}

	profileJSON struct {
		ID          string   `json:"id"`
		UserName    string   `json:"user_name"`
		PartnerName string   `json:"partner_name,omitempty"`
		Mode        string   `json:"mode"`
		Theme       string   `json:"theme"`
		HasAccess   bool     `json:"has_access"`
		Plan        string   `json:"plan"`
		Payers      []string `json:"payers"`
	}

	notificationJSON struct {
		ID      string    `json:"id"`
		Type    string    `json:"type"`
		Message string    `json:"message"`
		Date    time.Time `json:"date"`
		Read    bool      `json:"read"`
		Link    string    `json:"link,omitempty"`
	}

	monthJSON struct {
		Month string `json:"month"`
		Year  int    `json:"year"`
		Num   int    `json:"month_number"`
	}

	totalsJSON struct {
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
		Result  core.Money `json:"result"`
	}

	categoryAmountJSON struct {
		Name   string     `json:"name"`
		Amount core.Money `json:"amount"`
	}

	monthPointJSON struct {
		Month   core.Month `json:"month"`
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
	}

	dashboardJSON struct {
		Month          core.Month           `json:"month"`
		Totals         totalsJSON           `json:"totals"`
		ClosingBalance core.Money           `json:"closing_balance"`
		NextOpening    core.Money           `json:"next_opening"`
		Annual         []monthPointJSON     `json:"annual"`
		ByCategory     []categoryAmountJSON `json:"by_category"`
		Recent         []transactionJSON    `json:"recent"`
		Statements     []statementJSON      `json:"statements"`
		Goals          []goalJSON           `json:"goals"`
	}

	partJSON struct {
		Number int        `json:"number"`
		Amount core.Money `json:"amount"`
		Date   core.Date  `json:"date"`
	}

	previewJSON struct {
		Total core.Money `json:"total"`
		Parts []partJSON `json:"parts"`
	}
)

func newTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:             t.ID,
		Type:           string(t.Type),
		Amount:         t.Amount,
		Date:           t.Date,
		Description:    t.Description,
		Payer:          t.Payer,
		Category:       t.Category,
		Status:         string(t.Status),
		Recurrence:     string(t.Recurrence),
		PaymentMethod:  string(t.PaymentMethod),
		PaymentDetails: t.PaymentDetails,
		CardID:         t.CardID,
		CreatedAt:      t.CreatedAt,
	}
	if inst, ok := t.InstallmentGroup(); ok {
		out.Installment = &installmentJSON{Current: inst.Current, Total: inst.Total, ParentID: inst.ParentID}
	}
	return out
}

func newTransactionsJSON(ts []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, newTransactionJSON(t))
	}
	return out
}

func newCardJSON(c core.CreditCard) cardJSON {
	return cardJSON{
		ID:         c.ID,
		BankName:   c.BankName,
		HolderName: c.HolderName,
		Limit:      c.Limit,
		ClosingDay: c.ClosingDay,
		DueDay:     c.DueDay,
		CreatedAt:  c.CreatedAt,
	}
}

func newStatementJSON(st finance.CardStatement) statementJSON {
	return statementJSON{
		Card:        newCardJSON(st.Card),
		PeriodStart: st.PeriodStart,
		Total:       st.Total,
		Available:   st.Available,
	}
}

func newGoalJSON(g core.Goal) goalJSON {
	return goalJSON{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		InitialAmount: g.InitialAmount,
		CurrentAmount: g.CurrentAmount,
		StartDate:     g.StartDate,
		EndDate:       g.EndDate,
		Progress:      g.Progress(),
		CreatedAt:     g.CreatedAt,
	}
}

func newCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, Type: string(c.Type)}
}

func newProfileJSON(p core.Profile) profileJSON {
	return profileJSON{
		ID:          p.ID,
		UserName:    p.UserName,
		PartnerName: p.PartnerName,
		Mode:        string(p.Mode),
		Theme:       string(p.Theme),
		HasAccess:   p.HasAccess,
		Plan:        string(p.Plan),
		Payers:      p.Payers(),
	}
}

func newNotificationJSON(n core.Notification) notificationJSON {
	return notificationJSON{
		ID:      n.ID,
		Type:    string(n.Type),
		Message: n.Message,
		Date:    n.Date,
		Read:    n.Read,
		Link:    n.Link,
	}
}

func newMonthJSON(m core.Month) monthJSON {
	return monthJSON{Month: m.String(), Year: m.Year, Num: int(m.Month)}
}

func newDashboardJSON(d finance.Dashboard) dashboardJSON {
	out := dashboardJSON{
		Month: d.Month,
		Totals: totalsJSON{
			Income:  d.Totals.Income,
			Expense: d.Totals.Expense,
			Result:  d.Totals.Result,
		},
		ClosingBalance: d.ClosingBalance,
		NextOpening:    d.NextOpening,
		Annual:         make([]monthPointJSON, 0, len(d.Annual)),
		ByCategory:     make([]categoryAmountJSON, 0, len(d.ByCategory)),
		Recent:         newTransactionsJSON(d.Recent),
		Statements:     make([]statementJSON, 0, len(d.Statements)),
		Goals:          make([]goalJSON, 0, len(d.Goals)),
	}
	for _, p := range d.Annual {
		out.Annual = append(out.Annual, monthPointJSON{Month: p.Month, Income: p.Income, Expense: p.Expense})
	}
	for _, c := range d.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmountJSON{Name: c.Name, Amount: c.Amount})
	}
	for _, st := range d.Statements {
		out.Statements = append(out.Statements, newStatementJSON(st))
	}
	for _, gp := range d.Goals {
		g := newGoalJSON(gp.Goal)
		g.Progress = gp.Percent
		out.Goals = append(out.Goals, g)
	}
	return out
}

func newPreviewJSON(parts []installment.Part) previewJSON {
	out := previewJSON{Total: installment.Sum(parts), Parts: make([]partJSON, 0, len(parts))}
	for _, p := range parts {
		out.Parts = append(out.Parts, partJSON{Number: p.Number, Amount: p.Amount, Date: p.Date})
	}
	return out
}
