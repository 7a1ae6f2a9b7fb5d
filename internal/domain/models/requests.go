package models

// RatesRequest is the query of GET /api/rates. From and To accept any
// timestamp layout the ledger accepts; To is exclusive.
type RatesRequest struct {
	Currency string `query:"currency" validate:"required,alpha,max=16"`
	From     string `query:"from"`
	To       string `query:"to"`
	Limit    int    `query:"limit" default:"1000" validate:"gte=1,lte=50000"`
}
