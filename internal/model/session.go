package model

// Registration is a validated self-registration request. Password is plaintext.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// ProfileUpdate carries the fields an account may change on itself.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// Session is an authenticated account with freshly issued tokens.
type Session struct {
	Account Account
	Tokens  TokenPair
}
