package payment

import "strings"

type CardDetails struct {
	Number string `json:"number" validate:"required,min=12,max=19"`
	Expiry string `json:"expiry" validate:"required"`
	CVV    string `json:"cvv" validate:"required,len=3"`
}

type EFTDetails struct {
	Bank          string `json:"bank" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"required"`
	Holder        string `json:"holder" validate:"required"`
}

type InstalmentDetails struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	IDNumber      string `json:"idNumber" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"required"`
}

type DeliveryDetails struct {
	Address string `json:"address" validate:"required"`
}

// Form is everything the checkout screen collects besides the pricing
// choices. Only the section matching the payment type is looked at.
type Form struct {
	Card       CardDetails       `json:"card"`
	EFT        EFTDetails        `json:"eft"`
	Instalment InstalmentDetails `json:"instalment"`
	Delivery   DeliveryDetails   `json:"delivery"`
}

func (f Form) normalized() Form {
	t := strings.TrimSpace
	f.Card = CardDetails{
		Number: strings.ReplaceAll(t(f.Card.Number), " ", ""),
		Expiry: t(f.Card.Expiry),
		CVV:    t(f.Card.CVV),
	}
	f.EFT = EFTDetails{Bank: t(f.EFT.Bank), AccountNumber: t(f.EFT.AccountNumber), Holder: t(f.EFT.Holder)}
	f.Instalment = InstalmentDetails{
		Name:          t(f.Instalment.Name),
		Email:         t(f.Instalment.Email),
		IDNumber:      t(f.Instalment.IDNumber),
		BankName:      t(f.Instalment.BankName),
		AccountNumber: t(f.Instalment.AccountNumber),
	}
	f.Delivery.Address = t(f.Delivery.Address)
	return f
}
