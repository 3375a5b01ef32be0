// Package outreach drafts and sends the cold application email.
package outreach

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"careeragent/internal/model"
	"careeragent/internal/scoring"
)

// Draft is a composed email ready for review or sending.
type Draft struct {
	JobID   int64         `json:"job_id"`
	Company string        `json:"company"`
	Role    string        `json:"role"`
	To      string        `json:"to"`
	From    string        `json:"from"`
	Subject string        `json:"subject"`
	Body    string        `json:"body"`
	Contact model.Contact `json:"contact_info"`
}

const fallbackSkills = "relevant technical skills"

var (
	subjectTmpl = template.Must(template.New("subject").Parse(
		`Application for {{.Role}} – AI/ML Enthusiast`))

	bodyTmpl = template.Must(template.New("body").Parse(`Dear Hiring Manager at {{.Company}},

I am writing to express my strong interest in the {{.Role}} position at {{.Company}}. After reviewing the role requirements, I am confident that my background aligns well with what you are looking for.

I bring hands-on experience in {{.Skills}}, which directly maps to the technical requirements of this role. My recent projects demonstrate practical application of these skills in solving real-world problems.

Key highlights:
• Strong proficiency in {{.Skills}}
• Proven ability to deliver results in fast-paced environments
• Passionate about continuous learning and contributing to impactful teams

I would love the opportunity to discuss how my skills and enthusiasm can contribute to {{.Company}}'s mission. {{if .GitHub}}Please find my portfolio and work at {{.GitHub}}.{{else}}I would be glad to share my portfolio and work on request.{{end}}

Thank you for your time and consideration. I look forward to hearing from you.

Best regards,
{{if .Name}}{{.Name}}
{{end}}{{.Sender}}
{{if .Phone}}{{.Phone}}
{{end}}{{if .LinkedIn}}{{.LinkedIn}}
{{end}}`))
)

// Composer renders drafts for one sender address.
type Composer struct {
	sender string
}

// NewComposer returns a Composer signing with sender.
func NewComposer(sender string) *Composer {
	return &Composer{sender: sender}
}

// CommonSkills lists the profile skills the job asks for, or a generic
// phrase when there are none.
func CommonSkills(p model.Profile, j model.Job) string {
	matched, _ := scoring.MatchSkills(p.Skills, scoring.SplitSkills(j.RequiredSkills))
	if len(matched) == 0 {
		return fallbackSkills
	}
	return strings.Join(matched, ", ")
}

// Compose renders the subject and body for a job. The recipient is the
// job's recruiter email when known, otherwise the sender itself.
func (c *Composer) Compose(p model.Profile, j model.Job) (*Draft, error) {
	data := struct {
		Company, Role, Skills         string
		Name, Sender, Phone, LinkedIn string
		GitHub                        string
	}{
		Company:  j.Company,
		Role:     j.Role,
		Skills:   CommonSkills(p, j),
		Name:     p.Contact.FullName,
		Sender:   c.sender,
		Phone:    p.Contact.Phone,
		LinkedIn: p.Contact.LinkedInURL,
		GitHub:   p.Contact.GitHubURL,
	}

	var subject, body bytes.Buffer
	if err := subjectTmpl.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	if err := bodyTmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	to := j.RecruiterEmail
	if to == "" {
		to = c.sender
	}
	return &Draft{
		JobID:   j.ID,
		Company: j.Company,
		Role:    j.Role,
		To:      to,
		From:    c.sender,
		Subject: subject.String(),
		Body:    body.String(),
		Contact: p.Contact,
	}, nil
}
