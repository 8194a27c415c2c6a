package adminlogout

import "time"

type Input struct {
	Token string `json:"-"`
}

type Output struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	LogoutAt time.Time `json:"logoutAt"`
}
