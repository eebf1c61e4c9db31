package models

// Shapes returned by the commerce backend. The backend owns the schema; these
// structs only name the fields the frontend reads.

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

const (
	RoleAdmin   = "admin"
	RoleCreator = "creator"
	RoleClient  = "client"
)

type Creator struct {
	ID                       string  `json:"id"`
	UserID                   string  `json:"user_id,omitempty"`
	Email                    *string `json:"email,omitempty"`
	DisplayName              string  `json:"display_name"`
	Bio                      *string `json:"bio"`
	ProfileImageURL          *string `json:"profile_image_url"`
	Siret                    *string `json:"siret,omitempty"`
	StripeOnboardingComplete bool    `json:"stripe_onboarding_complete"`
	IsVerified               bool    `json:"is_verified,omitempty"`
	IsApproved               bool    `json:"is_approved"`
	CreatedAt                string  `json:"created_at,omitempty"`
}

type Product struct {
	ID          string  `json:"id"`
	CreatorID   string  `json:"creator_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	// Price is in minor currency units (cents).
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
	ImageURLs string `json:"image_urls"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type Event struct {
	ID            string   `json:"id"`
	CreatorID     string   `json:"creator_id"`
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	Date          string   `json:"date"`
	LocationText  string   `json:"location_text"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	CreatedByName string   `json:"created_by_name"`
	Status        string   `json:"status"`
	Visibility    string   `json:"visibility"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type Invitation struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	IsUsed    bool   `json:"is_used"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

type Stats struct {
	TotalCreators     int   `json:"total_creators"`
	TotalClients      int   `json:"total_clients"`
	TotalTransactions int   `json:"total_transactions"`
	TotalRevenue      int64 `json:"total_revenue"`
	TotalCommission   int64 `json:"total_commission"`
}

type StripeStatus struct {
	Connected          bool `json:"connected"`
	OnboardingComplete bool `json:"onboarding_complete"`
}

type Favorite struct {
	ProductID string `json:"product_id"`
}

type SearchResult struct {
	Results  []Product `json:"results"`
	Creators []Creator `json:"creators"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}
