package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Profile struct {
	ID          string `json:"_id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Image       string `json:"image,omitempty"`
	Role        string `json:"role,omitempty"`
}

// EffectiveRole returns the stored role, or RoleUser when none is set.
func (p Profile) EffectiveRole() string {
	if p.Role == "" {
		return RoleUser
	}
	return p.Role
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
