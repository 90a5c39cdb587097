package dto

// CreateBookingRequest mirrors the booking form. Due is split into date and
// time parts; both are ignored for immediate bookings.
type CreateBookingRequest struct {
	UserID               string   `json:"user_id" binding:"required"`
	Immediate            bool     `json:"immediate"`
	DueDate              string   `json:"due_date"`
	DueTime              string   `json:"due_time"`
	Duration             int      `json:"duration"`
	FromLanguageID       string   `json:"from_language_id"`
	JobFor               []string `json:"job_for"`
	CustomerPhoneType    bool     `json:"customer_phone_type"`
	CustomerPhysicalType bool     `json:"customer_physical_type"`
	UserEmail            string   `json:"user_email"`
	Reference            string   `json:"reference"`
	Address              string   `json:"address"`
	Instructions         string   `json:"instructions"`
	Town                 string   `json:"town"`
	ByAdmin              bool     `json:"by_admin"`
}

// ActorRequest carries the acting user for a lifecycle action.
type ActorRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// ReassignRequest carries the admin decision to hand the job to another
// translator.
type ReassignRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	TranslatorID string `json:"translator_id" binding:"required"`
}

// NotifyCandidatesRequest optionally excludes one translator from the
// re-notification fan-out.
type NotifyCandidatesRequest struct {
	ExcludeTranslatorID string `json:"exclude_translator_id"`
}

// UpdateBookingRequest is an admin edit. Nil fields are left untouched;
// due_date and due_time must be provided together.
type UpdateBookingRequest struct {
	UserID         string  `json:"user_id" binding:"required"`
	Status         *string `json:"status"`
	DueDate        *string `json:"due_date"`
	DueTime        *string `json:"due_time"`
	FromLanguageID *string `json:"from_language_id"`
	AdminComments  *string `json:"admin_comments"`
	Reference      *string `json:"reference"`
	SessionTime    *string `json:"session_time"`
}

// ListBookingsRequest filters and pages the booking listing.
type ListBookingsRequest struct {
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
	PageSize   int    `form:"page_size"`
	Cursor     string `form:"cursor"`
}

// BookingDTO is the booking shape returned by the API.
type BookingDTO struct {
	ID                   string   `json:"id"`
	Status               string   `json:"status"`
	Immediate            bool     `json:"immediate"`
	Due                  string   `json:"due"`
	Duration             int      `json:"duration"`
	FromLanguageID       string   `json:"from_language_id"`
	JobFor               []string `json:"job_for,omitempty"`
	JobType              string   `json:"job_type"`
	CustomerPhoneType    bool     `json:"customer_phone_type"`
	CustomerPhysicalType bool     `json:"customer_physical_type"`
	CustomerID           string   `json:"customer_id"`
	UserEmail            string   `json:"user_email,omitempty"`
	Reference            string   `json:"reference,omitempty"`
	Address              string   `json:"address,omitempty"`
	Instructions         string   `json:"instructions,omitempty"`
	Town                 string   `json:"town,omitempty"`
	SessionTime          string   `json:"session_time,omitempty"`
	CreatedAt            string   `json:"created_at"`
	WillExpireAt         string   `json:"will_expire_at"`
	TranslatorID         string   `json:"translator_id,omitempty"`
}

// ListBookingsResponse is one listing page plus the cursor for the next.
type ListBookingsResponse struct {
	Bookings   []BookingDTO `json:"bookings"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
