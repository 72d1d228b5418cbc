package domain

// Player is the tagged variant for a run participant. The remote API
// discriminates on a "rel" field: registered users carry a full user
// record, guests only a name.
type Player interface {
	Rel() PlayerRel
	DisplayName() string
}

type PlayerRel string

const (
	RelUser  PlayerRel = "user"
	RelGuest PlayerRel = "guest"
)

type RegisteredUser struct {
	ID      string
	Name    string
	Role    UserRole
	Country *string
	Weblink string
}

func (u RegisteredUser) Rel() PlayerRel      { return RelUser }
func (u RegisteredUser) DisplayName() string { return u.Name }

type Guest struct {
	Name    string
	Country *string
}

func (g Guest) Rel() PlayerRel      { return RelGuest }
func (g Guest) DisplayName() string { return g.Name }
