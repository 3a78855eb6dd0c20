package handlers

// Upstream field names are forgiving, so create/update bodies pass through as
// raw maps and go through normalization after the refetch. Sub-resource
// bodies carry a fixed contract and get typed DTOs.

type ResponseDTO struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date,omitempty"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type RequirementsDTO struct {
	Roles      []string `json:"roles,omitempty"`
	TechStack  []string `json:"techStack,omitempty"`
	HiringType string   `json:"hiringType,omitempty"`
	Budget     string   `json:"budget,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

type ShortlistDTO struct {
	IsShortlisted bool `json:"isShortlisted"`
}

// EmailDTO covers both single and group sends; one companyId means single
// (with the post-send status side effect), more means group.
type EmailDTO struct {
	CompanyIDs []string `json:"companyIds"`
	To         []string `json:"to"`
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
}
