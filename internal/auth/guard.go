package auth

import "github.com/restcontacts/contacts-api/internal/models"

// Guard authorizes an already-identified principal against a fixed set of
// allowed roles. There is no role hierarchy; every guard enumerates exactly
// the roles it accepts.
type Guard struct {
	allowed map[models.Role]struct{}
}

func NewGuard(roles ...models.Role) Guard {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return Guard{allowed: allowed}
}

func (g Guard) Check(role models.Role) error {
	if _, ok := g.allowed[role]; !ok {
		return ErrForbidden
	}
	return nil
}
