package session

// Auth is the authenticated-user context of a request.
type Auth struct {
	UserID *int64
}

// Guest is the context of an anonymous request.
func Guest() Auth {
	return Auth{}
}

func User(id int64) Auth {
	return Auth{UserID: &id}
}

func (a Auth) IsAuthenticated() bool {
	return a.UserID != nil
}
