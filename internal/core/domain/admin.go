package domain

type Admin struct {
	ID           string `json:"admin_id"`
	Password     string `json:"-"`
	SessionToken string `json:"-"`
}
