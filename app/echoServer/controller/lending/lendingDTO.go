package lending

type RentReq struct {
	Days int `json:"days" validate:"required"`
}
