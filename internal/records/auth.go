package records

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "username", r.Username, "El usuario es requerido")
	requireField(errs, "password", r.Password, "La contraseña es requerida")
	return errs.Err()
}

// LoginResult carries the token the system of record issued for the user.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RecoveryIdentity is the account found for a password recovery.
type RecoveryIdentity struct {
	UserID              string  `json:"userId"`
	Username            string  `json:"username"`
	Email               string  `json:"email"`
	SecurityQuestion    *string `json:"securityQuestion"`
	HasSecurityQuestion bool    `json:"hasSecurityQuestion"`
}

type RecoveryRequest struct {
	Username string `json:"username"`
}

func (r RecoveryRequest) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "username", r.Username, "El usuario es requerido")
	return errs.Err()
}

type SecurityAnswer struct {
	UserID string `json:"userId"`
	Answer string `json:"answer"`
}

func (a SecurityAnswer) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "userId", a.UserID, "El usuario es requerido")
	requireField(errs, "answer", a.Answer, "La respuesta es requerida")
	return errs.Err()
}

type ResetToken struct {
	ResetToken string `json:"resetToken"`
}

type PasswordReset struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func (r PasswordReset) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "resetToken", r.ResetToken, "El token de recuperación es requerido")
	if len(r.NewPassword) < MinPasswordLength {
		errs.Add("newPassword", "La nueva contraseña debe tener al menos 6 caracteres")
	}
	return errs.Err()
}
