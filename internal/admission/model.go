package admission

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex-admissions/admission_api/internal/validation"
)

var (
	ErrMissingEmail       = errors.New("application email is required")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// Notification statuses recorded per submission.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Application is the form payload posted by the portal once an applicant finishes.
// Scalar fields are lenient: the portal sends some of them as numbers.
type Application struct {
	Email         validation.LooseString `json:"email"`
	FullName      validation.LooseString `json:"fullName"`
	Mobile        validation.LooseString `json:"mobile"`
	Address       validation.LooseString `json:"address"`
	City          validation.LooseString `json:"city"`
	State         validation.LooseString `json:"state"`
	Zipcode       validation.LooseString `json:"zipcode"`
	Gender        validation.LooseString `json:"gender"`
	Category      validation.LooseString `json:"category"`
	AadhaarNumber validation.LooseString `json:"aadhaarNumber"`
	Parents       Parents                `json:"parents"`
	Education     Education              `json:"education"`
	Uploads       Uploads                `json:"uploads"`
}

type Parents struct {
	Father Parent `json:"father"`
	Mother Parent `json:"mother"`
}

type Parent struct {
	Name       validation.LooseString `json:"name"`
	Mobile     validation.LooseString `json:"mobile"`
	Profession validation.LooseString `json:"profession"`
}

type Education struct {
	Class10 SchoolRecord `json:"class10"`
	Class12 SchoolRecord `json:"class12"`
}

type SchoolRecord struct {
	Board      validation.LooseString `json:"board"`
	SchoolName validation.LooseString `json:"schoolName"`
	Percentage validation.LooseString `json:"percentage"`
}

// Uploads holds links to documents already stored by the portal.
type Uploads struct {
	PassportPhoto validation.LooseString `json:"passportPhoto"`
	AadhaarCard   validation.LooseString `json:"adharCard"`
	Marksheet10   validation.LooseString `json:"marksheet10"`
	Marksheet12   validation.LooseString `json:"marksheet12"`
}

// DecodeApplication parses a notify-admin body. A body whose sections do not
// match the expected shape still yields the applicant's email and name, so a
// malformed optional section never rejects the submission.
func DecodeApplication(body []byte) (Application, error) {
	var app Application
	if err := json.Unmarshal(body, &app); err == nil {
		return app, nil
	}

	var loose struct {
		Email    json.RawMessage `json:"email"`
		FullName json.RawMessage `json:"fullName"`
	}
	if err := json.Unmarshal(body, &loose); err != nil {
		return Application{}, fmt.Errorf("decode application: %w", err)
	}
	// Composite values are dropped; only scalars survive.
	_ = json.Unmarshal(loose.Email, &app.Email)
	_ = json.Unmarshal(loose.FullName, &app.FullName)
	return app, nil
}

// Submission is one recorded notify-admin call and the fate of its email.
type Submission struct {
	ID        string
	Email     string
	FullName  string
	Payload   []byte
	Status    string
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
