package users

// ModuleConfig is the public configuration of the users module
type ModuleConfig struct {
	SelfRegistration            bool `json:"selfRegistration"`
	InvitationCodeRequired      bool `json:"invitationCodeRequired"`
	RegistrationLinkByEmail     bool `json:"registrationLinkByEmail"`
	AutoValidation              bool `json:"autoValidation"`
	EulaRequired                bool `json:"eulaRequired"`
	PasswordMinSize             int  `json:"passwordMinSize"`
	PasswordMinUpperCase        int  `json:"passwordMinUpperCase"`
	PasswordMinLowerCase        int  `json:"passwordMinLowerCase"`
	PasswordMinDigits           int  `json:"passwordMinDigits"`
	PasswordMinSymbols          int  `json:"passwordMinSymbols"`
	DeletionPurgatoryDelayHours int  `json:"deletionPurgatoryDelayHours"`
	SubGroupUnderVirtualAllowed bool `json:"subGroupUnderVirtualAllowed"`
}

// TwoFAType is a second factor method
type TwoFAType string

const (
	TwoFANone          TwoFAType = "NONE"
	TwoFAEmail         TwoFAType = "EMAIL"
	TwoFASMS           TwoFAType = "SMS"
	TwoFAAuthenticator TwoFAType = "AUTHENTICATOR"
)

// LoginBody is the sign-in request
type LoginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by sign-in, second factor upgrade and renewal
type LoginResponse struct {
	Email               string    `json:"email,omitempty"`
	Login               string    `json:"login,omitempty"`
	JWTToken            string    `json:"jwtToken"`
	JWTRenewalToken     string    `json:"jwtRenewalToken"`
	PasswordExpired     bool      `json:"passwordExpired"`
	ConditionToValidate bool      `json:"conditionToValidate"`
	TwoFARequired       bool      `json:"twoFARequired"`
	TwoFAValidated      bool      `json:"twoFAValidated"`
	TwoFASize           int       `json:"twoFASize"`
	TwoFAType           TwoFAType `json:"twoFAType"`
}

// PasswordChangeBody changes the password of the signed-in user, or of the
// account a reset key was mailed for.
type PasswordChangeBody struct {
	Password  string `json:"password" validate:"required"`
	ChangeKey string `json:"changeKey,omitempty"`
}

// PasswordLostBody asks for a reset link
type PasswordLostBody struct {
	Email string `json:"email" validate:"required,email"`
}

// AccountRegistrationBody starts self registration
type AccountRegistrationBody struct {
	Email            string `json:"email" validate:"required,email"`
	RegistrationCode string `json:"registrationCode,omitempty"`
}

// AccountCreationBody completes self registration
type AccountCreationBody struct {
	Email               string `json:"email,omitempty" validate:"omitempty,email"`
	Password            string `json:"password" validate:"required"`
	ConditionValidation bool   `json:"conditionValidation,omitempty"`
	ValidationID        string `json:"validationID,omitempty"`
}

// ACL is a set of roles granted on one group
type ACL struct {
	Group     string   `json:"group"`
	LocalName string   `json:"localName"`
	Roles     []string `json:"roles"`
}

// CustomField is a profile extension. Its type is declared by the backend.
type CustomField struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

// BasicProfile is the profile of the signed-in user
type BasicProfile struct {
	Email                string        `json:"email,omitempty"`
	Login                string        `json:"login,omitempty"`
	FirstName            string        `json:"firstName,omitempty"`
	LastName             string        `json:"lastName,omitempty"`
	MobileNumber         string        `json:"mobileNumber,omitempty"`
	ISOCountryCode       string        `json:"isoCountryCode,omitempty"`
	PasswordExpirationMs int64         `json:"passwordExpirationMs"`
	Language             string        `json:"language"`
	LastComMessageSeen   int64         `json:"lastComMessageSeen"`
	Roles                []string      `json:"roles"`
	ACLs                 []ACL         `json:"acls"`
	CustomFields         []CustomField `json:"customFields"`
	TwoFAConfig          TwoFAType     `json:"twoFAConfig"`
}

// CustomFieldsBody replaces the custom fields of a profile
type CustomFieldsBody struct {
	Login        string        `json:"login" validate:"required"`
	CustomFields []CustomField `json:"customFields" validate:"dive"`
}

// BasicProfileBody updates the basic profile
type BasicProfileBody struct {
	Login          string        `json:"login,omitempty"`
	FirstName      string        `json:"firstName,omitempty"`
	LastName       string        `json:"lastName,omitempty"`
	MobileNumber   string        `json:"mobileNumber,omitempty"`
	ISOCountryCode string        `json:"isoCountryCode,omitempty" validate:"omitempty,len=2"`
	Language       string        `json:"language" validate:"required"`
	CustomFields   []CustomField `json:"customFields,omitempty" validate:"omitempty,dive"`
}

// TwoFABody selects the second factor method
type TwoFABody struct {
	TwoFAType TwoFAType `json:"twoFaType" validate:"required,oneof=NONE EMAIL SMS AUTHENTICATOR"`
}

// TwoFAResponse carries the authenticator secret when one was generated
type TwoFAResponse struct {
	TwoFAType TwoFAType `json:"twoFaType"`
	Secret    string    `json:"secret,omitempty"`
}

// UserListElement is a row of the admin user list
type UserListElement struct {
	Login             string    `json:"login"`
	Email             string    `json:"email"`
	LastLogin         int64     `json:"lastLogin"`
	CountLogin        int64     `json:"countLogin"`
	RegistrationDate  int64     `json:"registrationDate"`
	DeletionDate      int64     `json:"deletionDate"`
	IsActive          bool      `json:"isActive"`
	IsLocked          bool      `json:"isLocked"`
	IsPasswordExpired bool      `json:"isPasswordExpired"`
	IsAPIAccount      bool      `json:"isApiAccount"`
	TwoFA             TwoFAType `json:"twoFa"`
}

// IdentificationBody designates a user
type IdentificationBody struct {
	Login string `json:"login" validate:"required"`
}

// SearchBody searches users by login or email fragment
type SearchBody struct {
	Search string `json:"search" validate:"required,min=3"`
}

// StateSwitchBody activates or deactivates a user
type StateSwitchBody struct {
	Login string `json:"login" validate:"required"`
	State bool   `json:"state"`
}

// AccessibleRole is a role the admin may grant
type AccessibleRole struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	EnDescription string `json:"enDescription"`
}

// Role describes a role attached to a user
type Role struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	EnDescription string `json:"enDescription,omitempty"`
	Assignable    bool   `json:"assignable,omitempty"`
}

// GroupAttributeParam is a key with its values
type GroupAttributeParam struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// GroupAttribute is a typed group attribute
type GroupAttribute struct {
	Type   string                `json:"type"`
	Params []GroupAttributeParam `json:"params"`
}

// Group is a group with its subgroups
type Group struct {
	ShortID     string           `json:"shortId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Attributes  []GroupAttribute `json:"attributes,omitempty"`
	Subs        []Group          `json:"subs,omitempty"`
}

// ACLTree is an ACL with the ACLs inherited by subgroups
type ACLTree struct {
	ACL  ACL       `json:"acl"`
	Subs []ACLTree `json:"subs,omitempty"`
}

// RightsRequest selects which rights of a user to return
type RightsRequest struct {
	Login          string `json:"login" validate:"required"`
	ConsiderRoles  bool   `json:"considerRoles"`
	ConsiderGroups bool   `json:"considerGroups"`
	ConsiderSubs   bool   `json:"considerSubs"`
	ConsiderACLs   bool   `json:"considerACLs"`
}

// RightsResponse are the rights of a user
type RightsResponse struct {
	Login          string    `json:"login"`
	ConsiderRoles  bool      `json:"considerRoles"`
	Roles          []Role    `json:"roles,omitempty"`
	ConsiderGroups bool      `json:"considerGroups"`
	ConsiderSubs   bool      `json:"considerSubs"`
	Groups         []Group   `json:"groups,omitempty"`
	ConsiderACLs   bool      `json:"considerACLs"`
	ACLs           []ACLTree `json:"acls,omitempty"`
}

// RightsUpdateBody replaces the parts of the rights flagged with Consider*
type RightsUpdateBody struct {
	Login          string   `json:"login" validate:"required"`
	ConsiderRoles  bool     `json:"considerRoles"`
	Roles          []string `json:"roles,omitempty"`
	ConsiderGroups bool     `json:"considerGroups"`
	Groups         []string `json:"groups,omitempty"`
	ConsiderACLs   bool     `json:"considerACLs"`
	ACLs           []ACL    `json:"acls,omitempty"`
}

// GroupHierarchy is the simplified group tree visible to the user
type GroupHierarchy struct {
	ShortID     string           `json:"shortId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Roles       []string         `json:"roles"`
	Children    []GroupHierarchy `json:"children"`
}

// GroupCreationBody creates a group, under ParentID when set
type GroupCreationBody struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ParentID    string `json:"parenId,omitempty"`
}
