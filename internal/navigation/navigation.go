// Package navigation resolves which top-level page a visitor may see and the
// sections each dashboard offers.
package navigation

import "github.com/example/recruitment-portal/internal/persistence"

// Page is one of the portal's top-level views.
type Page string

const (
	Landing            Page = "landing"
	Login              Page = "login"
	Register           Page = "register"
	PasswordRecovery   Page = "password_recovery"
	AdminDashboard     Page = "admin_dashboard"
	CandidateDashboard Page = "candidate_dashboard"
	ChangePassword     Page = "change_password"
)

// Section is one tab of a dashboard. Each section is served by exactly one API resource.
type Section struct {
	Name     string `json:"name"`
	Resource string `json:"resource"`
}

var (
	adminSections = []Section{
		{Name: "overview", Resource: "/admin/overview"},
		{Name: "candidates", Resource: "/admin/candidates"},
		{Name: "applications", Resource: "/admin/applications"},
		{Name: "interviews", Resource: "/admin/interviews"},
		{Name: "positions", Resource: "/admin/positions"},
		{Name: "documents", Resource: "/admin/documents"},
		{Name: "messages", Resource: "/admin/messages"},
		{Name: "screening_tests", Resource: "/admin/tests"},
	}
	candidateSections = []Section{
		{Name: "profile", Resource: "/me"},
		{Name: "application", Resource: "/me/application"},
		{Name: "messages", Resource: "/me/messages"},
		{Name: "documents", Resource: "/me/documents"},
		{Name: "interviews", Resource: "/me/interviews"},
		{Name: "tests", Resource: "/me/tests"},
	}
	// Only the routes open before rotation.
	changePasswordSections = []Section{
		{Name: "password", Resource: "/me/password"},
	}
)

// State is what the resolver knows about the visitor.
type State struct {
	Authenticated      bool
	Role               persistence.Role
	MustChangePassword bool
}

// ParsePage reports whether s names a known page.
func ParsePage(s string) (Page, bool) {
	switch p := Page(s); p {
	case Landing, Login, Register, PasswordRecovery, AdminDashboard, CandidateDashboard, ChangePassword:
		return p, true
	}
	return "", false
}

func (p Page) public() bool {
	switch p {
	case Landing, Login, Register, PasswordRecovery:
		return true
	}
	return false
}

// Home returns the dashboard belonging to role.
func Home(role persistence.Role) Page {
	if role == persistence.RoleAdmin {
		return AdminDashboard
	}
	return CandidateDashboard
}

// Resolve returns the page actually shown when the visitor asks for requested.
// Visitors without a session only reach public pages and fall back to Landing.
// Signed-in users are sent to their own dashboard, or to ChangePassword while
// their password still has to be rotated.
func Resolve(state State, requested Page) Page {
	if !state.Authenticated {
		if requested.public() {
			return requested
		}
		return Landing
	}
	if state.MustChangePassword {
		return ChangePassword
	}
	return Home(state.Role)
}

// Sections lists the tabs available on page.
func Sections(page Page) []Section {
	var src []Section
	switch page {
	case AdminDashboard:
		src = adminSections
	case CandidateDashboard:
		src = candidateSections
	case ChangePassword:
		src = changePasswordSections
	default:
		return nil
	}
	out := make([]Section, len(src))
	copy(out, src)
	return out
}
