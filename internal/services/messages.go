package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flux/internal/core"
)

// NewInfo builds an info notification with a random id.
func NewInfo(message string, now time.Time) core.Notification {
	return core.Notification{
		ID:      uuid.NewString(),
		Message: message,
		Date:    now,
		Type:    core.InfoNotification,
	}
}

func TransactionCreated(tx core.Transaction) string {
	return fmt.Sprintf("%s \"%s\" criada.", tx.Type.Label(), tx.Description)
}

// InstallmentPlanCreated describes a whole batch of siblings.
func InstallmentPlanCreated(siblings []core.Transaction) string {
	if len(siblings) == 0 {
		return ""
	}
	var total core.Money
	for _, s := range siblings {
		total = total.Add(s.Amount)
	}
	first := siblings[0]
	return fmt.Sprintf("%s parcelada \"%s\" (%dx) no valor total de %s criada.",
		first.Type.Label(), first.BaseDescription(), len(siblings), total.FormatBRL())
}

func TransactionUpdated(tx core.Transaction) string {
	return fmt.Sprintf("Lançamento \"%s\" atualizado.", tx.Description)
}

// TransactionDeleted picks the message by schedule: a sibling deletes its
// whole group.
func TransactionDeleted(tx core.Transaction) string {
	switch tx.Schedule.(type) {
	case core.Installment, *core.Installment:
		return fmt.Sprintf("Parcelamento \"%s\" e todas as suas parcelas foram excluídos.", tx.BaseDescription())
	default:
		return fmt.Sprintf("Lançamento \"%s\" excluído.", tx.Description)
	}
}

func CardAdded(c core.CreditCard) string   { return fmt.Sprintf("Cartão \"%s\" adicionado.", c.BankName) }
func CardUpdated(c core.CreditCard) string { return fmt.Sprintf("Cartão \"%s\" atualizado.", c.BankName) }
func CardDeleted(c core.CreditCard) string { return fmt.Sprintf("Cartão \"%s\" excluído.", c.BankName) }

func GoalCreated(g core.Goal) string { return fmt.Sprintf("Meta \"%s\" criada.", g.Name) }
func GoalUpdated(g core.Goal) string { return fmt.Sprintf("Meta \"%s\" atualizada.", g.Name) }
func GoalDeleted(g core.Goal) string { return fmt.Sprintf("Meta \"%s\" excluída.", g.Name) }

func CategoryCreated(c core.Category) string { return fmt.Sprintf("Categoria \"%s\" criada.", c.Name) }
func CategoryUpdated(c core.Category) string { return fmt.Sprintf("Categoria \"%s\" atualizada.", c.Name) }
func CategoryDeleted(c core.Category) string { return fmt.Sprintf("Categoria \"%s\" excluída.", c.Name) }

const SettingsSaved = "Configurações salvas."
