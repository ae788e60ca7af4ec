package dto

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`                 // "Admin" | "Member" (default Member)
	AdminCode string `json:"admin_code,omitempty"` // exigido quando Role=Admin
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"` // "Admin" | "Member"
}

type UpdateReedzRequest struct {
	Reedz int64 `json:"reedz"` // saldo absoluto
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirm struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}
