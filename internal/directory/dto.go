package directory

type UserResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	DisplayName string `json:"display_name"`
	CountryID   *int64 `json:"country_id,omitempty"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}
