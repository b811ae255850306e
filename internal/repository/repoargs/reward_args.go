package repoargs

import "github.com/shopspring/decimal"

type CreateGiftCard struct {
	UserID      int64
	Code        string
	FaceValue   decimal.Decimal
	PointsSpent int64
}

type CreatePartnerTransaction struct {
	UserID     int64
	PartnerID  int64
	Amount     decimal.Decimal
	Points     int64
	ExternalID *string
}
