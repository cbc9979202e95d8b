package model

import "strconv"

type User struct {
	Id       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// DisplayName picks the name, then the username, then a generic label.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return "user"
	}
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Session is the client-held identity. The user id doubles as the bearer credential.
type Session struct {
	UserId   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (s Session) LoggedIn() bool {
	return s.UserId != 0
}

func (s Session) Token() string {
	if !s.LoggedIn() {
		return ""
	}
	return strconv.FormatInt(s.UserId, 10)
}
