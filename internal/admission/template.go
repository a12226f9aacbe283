package admission

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/apex-admissions/admission_api/internal/validation"
)

const adminNoticeHTML = `<html>
  <head><style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 20px auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px; background-color: #f9f9f9; }
    h2 { color: #0A2463; border-bottom: 2px solid #0A2463; padding-bottom: 10px; }
    h3 { color: #1E478B; margin-top: 25px; border-bottom: 1px solid #eee; padding-bottom: 5px; }
    .detail-grid { display: grid; grid-template-columns: 150px 1fr; gap: 8px 15px; margin-bottom: 15px; }
    .label { font-weight: 600; color: #555; }
    .value { word-break: break-word; }
    .doc-links a { display: inline-block; margin: 5px 10px 5px 0; padding: 8px 12px; background-color: #0A2463; color: #fff; text-decoration: none; border-radius: 5px; }
    .footer { margin-top: 30px; text-align: center; font-size: 0.9em; color: #777; }
  </style></head>
  <body>
    <div class="container">
      <h2>New Admission Application Received</h2>
      <p>A new application has been submitted on the portal. Details are as follows:</p>
{{range .Sections}}
      <h3>{{.Title}}</h3>
{{- range .Groups}}
{{- if .Heading}}
      <p><strong>{{.Heading}}:</strong></p>
{{- end}}
{{- range .Details}}
      <div class="detail-grid"><span class="label">{{.Label}}:</span><span class="value">{{.Value}}</span></div>
{{- end}}
{{- end}}
{{end}}
      <h3>Uploaded Documents</h3>
      <div class="doc-links">
{{- range .Links}}
        <a href="{{.URL}}" target="_blank">{{.Label}}</a>
{{- end}}
      </div>

      <div class="footer">
        <p>This is an automated notification from the Apex Admission Portal.</p>
      </div>
    </div>
  </body>
</html>
`

var adminNotice = template.Must(template.New("admin_notice").Parse(adminNoticeHTML))

type detail struct {
	Label string
	Value validation.LooseString
}

type detailGroup struct {
	Heading string
	Details []detail
}

type section struct {
	Title  string
	Groups []detailGroup
}

type docLink struct {
	Label string
	URL   validation.LooseString
}

type noticeView struct {
	Sections []section
	Links    []docLink
}

// RenderAdminNotice renders the HTML email sent to the admissions office.
// Empty fields are left out and every value is HTML-escaped.
func RenderAdminNotice(app Application) (string, error) {
	view := noticeView{
		Sections: []section{
			{Title: "Applicant Details", Groups: []detailGroup{{Details: details(
				detail{"Full Name", app.FullName},
				detail{"Email", app.Email},
				detail{"Mobile", app.Mobile},
				detail{"Address", formatAddress(app)},
				detail{"Gender", app.Gender},
				detail{"Category", app.Category},
				detail{"Aadhaar No.", app.AadhaarNumber},
			)}}},
			{Title: "Parent's Details", Groups: []detailGroup{
				parentGroup("Father", app.Parents.Father),
				parentGroup("Mother", app.Parents.Mother),
			}},
			{Title: "Education Details", Groups: []detailGroup{
				schoolGroup("Class X", app.Education.Class10),
				schoolGroup("Class XII", app.Education.Class12),
			}},
		},
		Links: links(
			docLink{"View Photo", app.Uploads.PassportPhoto},
			docLink{"View Aadhaar", app.Uploads.AadhaarCard},
			docLink{"View 10th Marksheet", app.Uploads.Marksheet10},
			docLink{"View 12th Marksheet", app.Uploads.Marksheet12},
		),
	}

	var buf bytes.Buffer
	if err := adminNotice.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render admin notice: %w", err)
	}
	return buf.String(), nil
}

func parentGroup(heading string, p Parent) detailGroup {
	return detailGroup{Heading: heading, Details: details(
		detail{"Name", p.Name},
		detail{"Mobile", p.Mobile},
		detail{"Profession", p.Profession},
	)}
}

func schoolGroup(heading string, r SchoolRecord) detailGroup {
	pct := r.Percentage
	if strings.TrimSpace(string(pct)) != "" {
		pct += "%"
	}
	return detailGroup{Heading: heading, Details: details(
		detail{"Board", r.Board},
		detail{"School", r.SchoolName},
		detail{"Percentage", pct},
	)}
}

func formatAddress(app Application) validation.LooseString {
	var parts []string
	for _, field := range []validation.LooseString{app.Address, app.City, app.State} {
		if p := strings.TrimSpace(string(field)); p != "" {
			parts = append(parts, p)
		}
	}
	addr := strings.Join(parts, ", ")
	if zip := strings.TrimSpace(string(app.Zipcode)); zip != "" {
		if addr == "" {
			return validation.LooseString(zip)
		}
		addr += " - " + zip
	}
	return validation.LooseString(addr)
}

func details(in ...detail) []detail {
	out := in[:0]
	for _, d := range in {
		if strings.TrimSpace(string(d.Value)) != "" {
			out = append(out, d)
		}
	}
	return out
}

func links(in ...docLink) []docLink {
	out := in[:0]
	for _, l := range in {
		if strings.TrimSpace(string(l.URL)) != "" {
			out = append(out, l)
		}
	}
	return out
}
