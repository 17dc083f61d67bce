package profile

// CreateInput registers the signed-in account under a new username.
type CreateInput struct {
	Body struct {
		Username    string `json:"username"              minLength:"1" required:"true" doc:"Unique username, compared case-insensitively" example:"alice"`
		DisplayName string `json:"displayName,omitempty" maxLength:"100"               doc:"Display name"                                 example:"Alice"`
		Bio         string `json:"bio,omitempty"         maxLength:"500"               doc:"Short biography"                              example:"Lifting since 2019"`
	}
}

// UpdateInput changes only the fields that are present.
type UpdateInput struct {
	Body struct {
		DisplayName    *string          `json:"displayName,omitempty"    maxLength:"100" doc:"Display name"           example:"Alice"`
		Bio            *string          `json:"bio,omitempty"            maxLength:"500" doc:"Short biography"        example:"Lifting since 2019"`
		IsDiscoverable *bool            `json:"isDiscoverable,omitempty"                 doc:"Appears in suggestions" example:"true"`
		Privacy        *PrivacySettings `json:"privacy,omitempty"                        doc:"Replaces the privacy settings as a whole"`
	}
}

// SessionInput is the input of operations acting only on the signed-in
// account.
type SessionInput struct{}
