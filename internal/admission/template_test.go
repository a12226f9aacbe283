package admission

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-admissions/admission_api/internal/validation"
)

const samplePayload = `{
  "email": "asha@example.com",
  "fullName": "Asha Verma",
  "mobile": "9876543210",
  "address": "12 MG Road",
  "city": "Pune",
  "state": "MH",
  "zipcode": "411001",
  "gender": "Female",
  "category": "General",
  "aadhaarNumber": "1234 5678 9012",
  "parents": {
    "father": {"name": "Ravi Verma", "mobile": "9000000001", "profession": "Engineer"},
    "mother": {"name": "Meera Verma"}
  },
  "education": {
    "class10": {"board": "CBSE", "schoolName": "DPS", "percentage": 91.5},
    "class12": {"board": "CBSE", "schoolName": "DPS", "percentage": "88"}
  },
  "uploads": {
    "passportPhoto": "https://files.example.com/photo.jpg",
    "marksheet12": "https://files.example.com/12.pdf"
  }
}`

func sampleApplication(t *testing.T) Application {
	t.Helper()
	var app Application
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &app))
	return app
}

func TestDecodeApplicationAcceptsNumericFields(t *testing.T) {
	app := sampleApplication(t)
	assert.Equal(t, validation.LooseString("91.5"), app.Education.Class10.Percentage)
	assert.Equal(t, validation.LooseString("88"), app.Education.Class12.Percentage)

	app, err := DecodeApplication([]byte(`{
	  "email": "a@example.com",
	  "mobile": 9876543210,
	  "zipcode": 560001,
	  "aadhaarNumber": 123456789012,
	  "parents": {"father": {"mobile": 9000000001}},
	  "education": {"class10": {"percentage": null}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, validation.LooseString("9876543210"), app.Mobile)
	assert.Equal(t, validation.LooseString("560001"), app.Zipcode)
	assert.Equal(t, validation.LooseString("123456789012"), app.AadhaarNumber)
	assert.Equal(t, validation.LooseString("9000000001"), app.Parents.Father.Mobile)
	assert.Empty(t, app.Education.Class10.Percentage)
}

func TestDecodeApplicationKeepsEmailWhenSectionsAreMalformed(t *testing.T) {
	app, err := DecodeApplication([]byte(`{"email":"a@example.com","fullName":"Asha","parents":"n/a","uploads":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, validation.LooseString("a@example.com"), app.Email)
	assert.Equal(t, validation.LooseString("Asha"), app.FullName)

	_, err = DecodeApplication([]byte(`not json`))
	assert.Error(t, err)
}

func TestRenderAdminNotice(t *testing.T) {
	html, err := RenderAdminNotice(sampleApplication(t))
	require.NoError(t, err)

	assert.Contains(t, html, "New Admission Application Received")
	assert.Contains(t, html, `<span class="label">Full Name:</span><span class="value">Asha Verma</span>`)
	assert.Contains(t, html, "12 MG Road, Pune, MH - 411001")
	assert.Contains(t, html, `<span class="value">91.5%</span>`)
	assert.Contains(t, html, `<span class="value">88%</span>`)
	assert.Contains(t, html, `<a href="https://files.example.com/photo.jpg" target="_blank">View Photo</a>`)
	assert.Contains(t, html, "View 12th Marksheet")
	assert.NotContains(t, html, "View Aadhaar")
	assert.NotContains(t, html, "View 10th Marksheet")
	// mother has no mobile or profession
	assert.Equal(t, 1, strings.Count(html, "Profession:"))
}

func TestRenderAdminNoticeOmitsEmptyFields(t *testing.T) {
	html, err := RenderAdminNotice(Application{Email: "a@example.com"})
	require.NoError(t, err)

	assert.Contains(t, html, "a@example.com")
	assert.NotContains(t, html, "Full Name:")
	assert.NotContains(t, html, "Address:")
	assert.NotContains(t, html, "Percentage:")
	assert.NotContains(t, html, "<a href")
}

func TestRenderAdminNoticeEscapes(t *testing.T) {
	html, err := RenderAdminNotice(Application{
		Email:    "a@example.com",
		FullName: `<script>alert("x")</script>`,
		Uploads:  Uploads{PassportPhoto: "javascript:alert(1)"},
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "javascript:alert")
}
