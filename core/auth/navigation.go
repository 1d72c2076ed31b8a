package auth

// Pages
const (
	PageDashboard   = "dashboard"
	PageTeachers    = "teachers"
	PageStudents    = "students"
	PageClasses     = "classes"
	PageSubjects    = "subjects"
	PageMissions    = "missions"
	PageQuestions   = "questions"
	PageReports     = "reports"
	PageLeaderboard = "leaderboard"
	PageSuggestions = "ai-suggestions"
	PageProfile     = "profile"
)

type NavItem struct {
	Page  string `json:"page"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

var navigation = map[string][]NavItem{
	RolePrincipal: {
		{Page: PageDashboard, Label: "Dashboard", Path: "/dashboard"},
		{Page: PageTeachers, Label: "Teachers", Path: "/teachers"},
		{Page: PageStudents, Label: "Students", Path: "/students"},
		{Page: PageClasses, Label: "Classes", Path: "/classes"},
		{Page: PageSubjects, Label: "Subjects", Path: "/subjects"},
		{Page: PageReports, Label: "Reports", Path: "/reports"},
		{Page: PageLeaderboard, Label: "Leaderboard", Path: "/leaderboard"},
		{Page: PageProfile, Label: "Profile", Path: "/profile"},
	},
	RoleTeacher: {
		{Page: PageDashboard, Label: "Dashboard", Path: "/dashboard"},
		{Page: PageStudents, Label: "My Students", Path: "/students"},
		{Page: PageClasses, Label: "My Classes", Path: "/classes"},
		{Page: PageMissions, Label: "Tests", Path: "/missions"},
		{Page: PageQuestions, Label: "Question Bank", Path: "/questions"},
		{Page: PageSuggestions, Label: "AI Suggestions", Path: "/ai-suggestions"},
		{Page: PageReports, Label: "Reports", Path: "/reports"},
		{Page: PageProfile, Label: "Profile", Path: "/profile"},
	},
}

// NavigationFor returns the pages reachable with role, in menu order.
// An unknown role reaches nothing.
func NavigationFor(role string) []NavItem {
	return append([]NavItem(nil), navigation[role]...)
}

// CanAccess reports whether role reaches page.
func CanAccess(role, page string) bool {
	for _, item := range navigation[role] {
		if item.Page == page {
			return true
		}
	}
	return false
}
