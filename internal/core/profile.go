package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Individual AppMode = "individual"
	Couple     AppMode = "couple"

	DarkTheme  Theme = "dark"
	LightTheme Theme = "light"

	FreePlan    Plan = "free"
	ProPlan     Plan = "pro"
	PremiumPlan Plan = "premium"

	DueNotification     NotificationType = "due"
	OverdueNotification NotificationType = "overdue"
	InfoNotification    NotificationType = "info"
)

type (
	AppMode          string
	Theme            string
	Plan             string
	NotificationType string

	// Profile holds the household settings of a user.
	Profile struct {
		ID          string
		UserName    string
		PartnerName string
		Mode        AppMode
		Theme       Theme
		HasAccess   bool
		Plan        Plan
	}

	// Notification is derived state; due and overdue entries are regenerated
	// on every ledger change.
	Notification struct {
		ID      string
		Message string
		Date    time.Time
		Read    bool
		Type    NotificationType
		Link    string
	}
)

// DefaultProfile is what a user gets the first time their ledger is opened.
func DefaultProfile(userID, userName string) Profile {
	if strings.TrimSpace(userName) == "" {
		userName = "Usuário"
	}
	return Profile{
		ID:        userID,
		UserName:  userName,
		Mode:      Individual,
		Theme:     DarkTheme,
		HasAccess: true,
		Plan:      ProPlan,
	}
}

// Normalize clears the partner name outside couple mode.
func (p *Profile) Normalize() {
	p.UserName = strings.TrimSpace(p.UserName)
	p.PartnerName = strings.TrimSpace(p.PartnerName)
	if p.Mode == Individual {
		p.PartnerName = ""
	}
}

func (p Profile) Validate() error {
	if p.UserName == "" {
		return &ValidationError{Field: "user_name", Message: "user name is required"}
	}
	if p.Mode != Individual && p.Mode != Couple {
		return &ValidationError{Field: "mode", Message: fmt.Sprintf("invalid mode %q", p.Mode)}
	}
	if p.Theme != DarkTheme && p.Theme != LightTheme {
		return &ValidationError{Field: "theme", Message: fmt.Sprintf("invalid theme %q", p.Theme)}
	}
	switch p.Plan {
	case FreePlan, ProPlan, PremiumPlan:
	default:
		return &ValidationError{Field: "plan", Message: fmt.Sprintf("invalid plan %q", p.Plan)}
	}
	return nil
}

// Payers lists the names a transaction may be attributed to.
func (p Profile) Payers() []string {
	payers := []string{p.UserName}
	if p.Mode == Couple && p.PartnerName != "" {
		payers = append(payers, p.PartnerName)
	}
	return payers
}
