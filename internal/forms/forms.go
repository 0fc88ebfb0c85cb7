// Package forms holds the pure validation rules for the three input
// screens. A field is nil until the user has typed into it; both nil and
// empty count as invalid. No format checks happen here: the identity
// provider is the authority on email shape and password strength.
package forms

// Button color tokens derived from form validity. Presentation hosts render
// these verbatim.
const (
	titleColorEnabled       = "#468189"
	titleColorDisabled      = "#77ACA2"
	backgroundColorEnabled  = "#F4E9CD"
	backgroundColorDisabled = "#F4E9CD80"
)

// ButtonState is the deterministic submit-control state for a form.
type ButtonState struct {
	Enabled         bool   `json:"enabled"`
	TitleColor      string `json:"title_color"`
	BackgroundColor string `json:"background_color"`
}

func buttonState(valid bool) ButtonState {
	if valid {
		return ButtonState{Enabled: true, TitleColor: titleColorEnabled, BackgroundColor: backgroundColorEnabled}
	}
	return ButtonState{Enabled: false, TitleColor: titleColorDisabled, BackgroundColor: backgroundColorDisabled}
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Form is the common contract of the per-screen form states.
type Form interface {
	IsValid() bool
	Button() ButtonState
}

// LoginForm is the login screen's field snapshot.
type LoginForm struct {
	Email    *string
	Password *string
}

func (f LoginForm) IsValid() bool {
	return present(f.Email) && present(f.Password)
}

func (f LoginForm) Button() ButtonState {
	return buttonState(f.IsValid())
}

func (f LoginForm) EmailValue() string    { return value(f.Email) }
func (f LoginForm) PasswordValue() string { return value(f.Password) }

// RegistrationForm is the registration screen's field snapshot.
type RegistrationForm struct {
	Email    *string
	Password *string
	FullName *string
}

func (f RegistrationForm) IsValid() bool {
	return present(f.Email) && present(f.Password) && present(f.FullName)
}

func (f RegistrationForm) Button() ButtonState {
	return buttonState(f.IsValid())
}

func (f RegistrationForm) EmailValue() string    { return value(f.Email) }
func (f RegistrationForm) PasswordValue() string { return value(f.Password) }
func (f RegistrationForm) FullNameValue() string { return value(f.FullName) }

// PasswordResetForm is the reset screen's field snapshot.
type PasswordResetForm struct {
	Email *string
}

func (f PasswordResetForm) IsValid() bool {
	return present(f.Email)
}

func (f PasswordResetForm) Button() ButtonState {
	return buttonState(f.IsValid())
}

func (f PasswordResetForm) EmailValue() string { return value(f.Email) }
