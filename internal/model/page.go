package model

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

type Page struct {
	Offset int
	Limit  int
}

func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
