package models

// Discriminator values stored in the "user_type" field.
const (
	TypeRegisteredUser = "RegisteredUser"
	TypeArtist         = "Artist"
	TypeAdmin          = "Admin"
)

// UserField is the discriminator field for principal records.
const UserField = "user_type"

// User holds the identity fields shared by every principal variant.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Disabled bool   `json:"disabled"`
}

// RegisteredUser is the base concrete principal: a user who can log in.
type RegisteredUser struct {
	User
	HashedPassword string `json:"-"`
	IsPremium      bool   `json:"is_premium"`
}

// Artist can upload media content.
type Artist struct {
	RegisteredUser
}

// Admin can manage users and content.
type Admin struct {
	RegisteredUser
}

// Principal is the closed set of user variants. Use UserType for capability
// checks and Flatten for persistence.
type Principal interface {
	UserType() string
	Flatten() Record
	Account() *RegisteredUser
}

func (u *RegisteredUser) UserType() string { return TypeRegisteredUser }
func (a *Artist) UserType() string         { return TypeArtist }
func (a *Admin) UserType() string          { return TypeAdmin }

func (u *RegisteredUser) Account() *RegisteredUser { return u }

func (u *RegisteredUser) flatten(userType string) Record {
	return Record{
		"id":              u.ID,
		"username":        u.Username,
		"full_name":       u.FullName,
		"email":           u.Email,
		"disabled":        u.Disabled,
		"hashed_password": u.HashedPassword,
		"is_premium":      u.IsPremium,
		UserField:         userType,
	}
}

func (u *RegisteredUser) Flatten() Record { return u.flatten(TypeRegisteredUser) }
func (a *Artist) Flatten() Record         { return a.flatten(TypeArtist) }
func (a *Admin) Flatten() Record          { return a.flatten(TypeAdmin) }

// ResolveUser reconstructs the concrete principal variant from a flat record.
// Records with a missing or unrecognised discriminator fail with
// ErrUnknownVariant rather than defaulting to a base variant, so corrupt data
// can never grant or mask capabilities.
func ResolveUser(rec Record) (Principal, error) {
	base := RegisteredUser{
		User: User{
			Username: stringField(rec, "username"),
			FullName: stringField(rec, "full_name"),
			Email:    stringField(rec, "email"),
			Disabled: boolField(rec, "disabled"),
		},
		HashedPassword: stringField(rec, "hashed_password"),
		IsPremium:      boolField(rec, "is_premium"),
	}
	base.ID, _ = intField(rec, "id")

	tag := stringField(rec, UserField)
	switch tag {
	case TypeRegisteredUser:
		return &base, nil
	case TypeArtist:
		return &Artist{RegisteredUser: base}, nil
	case TypeAdmin:
		return &Admin{RegisteredUser: base}, nil
	default:
		return nil, unknownVariant(UserField, tag)
	}
}
