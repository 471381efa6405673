package normalize

import "turnon/internal/models"

var (
	tokenKeys     = []string{"token", "access_token", "accessToken", "jwt", "data.token", "data.access_token", "data.accessToken"}
	loginUserKeys = []string{"user", "data.user", "usuario"}
)

// LoginSession extracts the bearer token and the signed-in user from a login
// response. The token is empty when the response carries none, and the user
// is zero when it carries no user object.
func LoginSession(raw any) (string, models.SessionUser) {
	r := asRecord(raw)
	token := r.str(tokenKeys...)

	nested := nestedUser(r)
	if nested == nil {
		return token, models.SessionUser{}
	}
	user := NormalizeUser(nested)
	return token, models.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// RegisteredUser normalizes the account returned by a registration call,
// which some backends wrap together with a token.
func RegisteredUser(raw any) models.UserAccount {
	if nested := nestedUser(asRecord(raw)); nested != nil {
		return NormalizeUser(nested)
	}
	return NormalizeUser(First(raw))
}

func nestedUser(r record) any {
	for _, key := range loginUserKeys {
		if v, ok := r.value(key); ok && asRecord(v) != nil {
			return v
		}
	}
	return nil
}
