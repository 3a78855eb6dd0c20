package models

// Status of a prospect in the outreach pipeline. Anything the upstream sends
// outside this set is stored as StatusUnknown.
type Status string

const (
	StatusNew         Status = "New"
	StatusContacted   Status = "Contacted"
	StatusResponded   Status = "Responded"
	StatusShortlisted Status = "Shortlisted"
	StatusRejected    Status = "Rejected"
	StatusUnknown     Status = "Unknown"
)

// KnownStatuses maps lowercased status strings to their canonical value.
var KnownStatuses = map[string]Status{
	"new":         StatusNew,
	"contacted":   StatusContacted,
	"responded":   StatusResponded,
	"shortlisted": StatusShortlisted,
	"rejected":    StatusRejected,
	"unknown":     StatusUnknown,
}

// Company is the canonical client-owned record. Every instance stored in the
// state store has passed through normalize.Normalize; no raw upstream record
// is kept directly.
type Company struct {
	ID           string `json:"id" bson:"_id"`
	Name         string `json:"name" bson:"name"`
	Website      string `json:"website" bson:"website"`
	Email        string `json:"email" bson:"email"`
	CreatorID    string `json:"creatorId" bson:"creator_id"`
	CreatorName  string `json:"creatorName" bson:"creator_name"`
	CreatorEmail string `json:"creatorEmail" bson:"creator_email"`

	// CreatorAliases carries every distinct owner identifier observed on the
	// raw record (nested creator object id, flat alias fields). The employee
	// visibility match checks the union of CreatorID and these.
	CreatorAliases []string `json:"-" bson:"creator_aliases,omitempty"`

	Responses     []Response    `json:"responses" bson:"responses"`
	Requirements  *Requirements `json:"requirements" bson:"requirements"`
	IsShortlisted bool          `json:"isShortlisted" bson:"is_shortlisted"`
	Status        Status        `json:"status" bson:"status"`

	ContactPerson        string `json:"contactPerson" bson:"contact_person"`
	PersonName           string `json:"personName" bson:"person_name"`
	PhoneNumber          string `json:"phoneNumber" bson:"phone_number"`
	AlternatePhoneNumber string `json:"alternatePhoneNumber" bson:"alternate_phone_number"`
	GSTNumber            string `json:"gstNumber" bson:"gst_number"`
	PANNumber            string `json:"panNumber" bson:"pan_number"`
	Industry             string `json:"industry" bson:"industry"`
	Description          string `json:"description" bson:"description"`
	DateAdded            string `json:"dateAdded" bson:"date_added"`
}

// Response is a tracked reply from a prospect. Appended in arrival order,
// never mutated or removed by this layer once added.
type Response struct {
	ID      string `json:"id" bson:"id"`
	Date    string `json:"date" bson:"date"`
	Subject string `json:"subject" bson:"subject"`
	Content string `json:"content" bson:"content"`
}

// Requirements is the prospect's hiring requirement sheet. At most one per
// company; a new submission replaces the previous one wholesale.
type Requirements struct {
	Roles      []string `json:"roles" bson:"roles"`
	TechStack  []string `json:"techStack" bson:"tech_stack"`
	HiringType string   `json:"hiringType" bson:"hiring_type"`
	Budget     string   `json:"budget" bson:"budget"`
	Notes      string   `json:"notes" bson:"notes"`
}

// OwnedBy reports whether id matches the company's creator under the
// three-way match (direct id, nested creator id, flat alias fields).
func (c Company) OwnedBy(id string) bool {
	if id == "" {
		return false
	}
	if c.CreatorID == id {
		return true
	}
	for _, alias := range c.CreatorAliases {
		if alias == id {
			return true
		}
	}
	return false
}
