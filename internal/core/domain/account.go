package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is a bank or cash account that transactions and invoice payments can reference.
type BankAccount struct {
	Name                 string          `json:"name" validate:"required,max=200"`
	BankName             string          `json:"bankName,omitempty" validate:"max=200"`
	AccountNumber        string          `json:"accountNumber,omitempty" validate:"max=64"`
	InitialBalance       decimal.Decimal `json:"initialBalance"`
	BalanceEffectiveDate time.Time       `json:"balanceEffectiveDate" validate:"required"`
	Currency             string          `json:"currency" validate:"required,len=3,uppercase"`
}

func (a BankAccount) Clone() BankAccount { return a }
