package entities

// IdentityStatement is the user's singleton self-description. At most
// one exists per user; absence is a valid state ("not yet defined").
type IdentityStatement struct {
	UserID          string
	SelfDescription string
	CoreValues      string
	WeeklyFocus     string
	LongHorizon     string // optional longer-horizon note
}
