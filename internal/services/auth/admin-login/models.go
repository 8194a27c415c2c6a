package adminlogin

import "time"

type Input struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type Output struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
