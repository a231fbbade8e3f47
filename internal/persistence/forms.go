package persistence

// ApplicationForm is the structured application payload, persisted as JSON.
type ApplicationForm struct {
	PersonalInfo          PersonalInfo          `json:"personal_info"`
	ProfessionalInfo      ProfessionalInfo      `json:"professional_info"`
	Education             []Education           `json:"education,omitempty"`
	Certifications        []Certification       `json:"certifications,omitempty"`
	Skills                Skills                `json:"skills"`
	WorkAuthorization     WorkAuthorization     `json:"work_authorization"`
	References            []Reference           `json:"references,omitempty"`
	SchedulingPreferences SchedulingPreferences `json:"scheduling_preferences"`
}

type PersonalInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

type ProfessionalInfo struct {
	Position        string `json:"position"`
	CurrentEmployer string `json:"current_employer,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty"`
	ExpectedSalary  string `json:"expected_salary,omitempty"`
	NoticePeriod    string `json:"notice_period,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        int    `json:"year,omitempty"`
	Grade       string `json:"grade,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   int    `json:"year,omitempty"`
}

type Skills struct {
	Technical []string `json:"technical,omitempty"`
	Soft      []string `json:"soft,omitempty"`
}

type WorkAuthorization struct {
	Status              string `json:"status,omitempty"`
	RequiresSponsorship bool   `json:"requires_sponsorship"`
}

type Reference struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Contact      string `json:"contact"`
}

type SchedulingPreferences struct {
	AvailableFrom           string `json:"available_from,omitempty"`
	PreferredInterviewTimes string `json:"preferred_interview_times,omitempty"`
	AdditionalInfo          string `json:"additional_info,omitempty"`
}
