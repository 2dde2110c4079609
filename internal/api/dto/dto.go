package dto

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OverdueScanResponse struct {
	Success bool `json:"success"`
	Checked int  `json:"checked"`
	Updated int  `json:"updated"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped,omitempty"`
}

type ContractScanResponse struct {
	Success  bool `json:"success"`
	Checked  int  `json:"checked"`
	Expiring int  `json:"expiring"`
	Expired  int  `json:"expired"`
	Failed   int  `json:"failed"`
	Skipped  bool `json:"skipped,omitempty"`
}

type UserDTO struct {
	ID              string `json:"id"`
	OrganizationID  string `json:"organization_id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Role            string `json:"role"`
	GoogleConnected bool   `json:"google_connected"`
}

type GoogleTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CreateVendorRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"max=32"`
}

type VendorDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
}

type ListVendorsResponse struct {
	Vendors []VendorDTO `json:"vendors"`
}

type NotificationDTO struct {
	ID                string  `json:"id"`
	Type              string  `json:"type"`
	Message           string  `json:"message"`
	RelatedEntityType *string `json:"related_entity_type"`
	RelatedEntityID   *string `json:"related_entity_id"`
	IsRead            bool    `json:"is_read"`
	CreatedAt         string  `json:"created_at"`
}

type ListNotificationsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
