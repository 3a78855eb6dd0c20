package models

// Role of an authenticated dashboard user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployee  Role = "employee"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
)

// Actor is the authenticated identity driving visibility scoping. It is
// supplied by the auth collaborator in front of this service and is read-only
// input here.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// EmailMessage is a sent outreach email as returned by the upstream backend.
type EmailMessage struct {
	ID         string   `json:"id"`
	To         []string `json:"to"`
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
	CompanyIDs []string `json:"companyIds,omitempty"`
	SentAt     string   `json:"sentAt,omitempty"`
}
