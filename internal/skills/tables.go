package skills

var adjacentRoles = map[string][]string{
	"Data Engineer":             {"Data Scientist", "DevOps Engineer", "Software Engineer", "Machine Learning Engineer"},
	"Software Engineer":         {"DevOps Engineer", "Data Engineer", "Frontend Developer", "Backend Developer"},
	"Data Scientist":            {"Machine Learning Engineer", "Data Engineer", "Product Manager", "Software Engineer"},
	"DevOps Engineer":           {"Software Engineer", "Data Engineer", "Site Reliability Engineer", "Security Engineer"},
	"Product Manager":           {"Data Scientist", "UX/UI Designer", "Business Analyst", "Software Engineer"},
	"UX/UI Designer":            {"Frontend Developer", "Product Manager", "Graphic Designer", "User Researcher"},
	"Frontend Developer":        {"Backend Developer", "UX/UI Designer", "Mobile Developer", "Software Engineer"},
	"Backend Developer":         {"Frontend Developer", "DevOps Engineer", "Data Engineer", "Software Engineer"},
	"Machine Learning Engineer": {"Data Scientist", "Software Engineer", "Data Engineer", "Research Scientist"},
	"QA Engineer":               {"Software Engineer", "DevOps Engineer", "Test Automation Engineer", "Product Manager"},
}

var defaultAdjacentRoles = []string{"Software Engineer", "Product Manager", "Data Scientist"}

// AdjacentRoles returns the roles a member of role can most easily branch into.
func AdjacentRoles(role string) []string {
	if roles, ok := adjacentRoles[role]; ok {
		return append([]string(nil), roles...)
	}
	return append([]string(nil), defaultAdjacentRoles...)
}

var roleTrends = map[string][]string{
	"Data Engineer":             {"MLOps", "Real-time Processing", "Data Governance", "Cloud Data Platforms"},
	"Software Engineer":         {"AI/ML Integration", "Cloud Native", "Microservices", "Security"},
	"Data Scientist":            {"MLOps", "AutoML", "Explainable AI", "Edge Computing"},
	"DevOps Engineer":           {"GitOps", "Platform Engineering", "Security", "Observability"},
	"Product Manager":           {"AI/ML Products", "Data-Driven Decision Making", "Platform Strategy", "User Research"},
	"UX/UI Designer":            {"AI/ML Design", "Accessibility", "Design Systems", "User Research"},
	"Frontend Developer":        {"AI/ML Frontend", "Web3", "Progressive Web Apps", "Performance"},
	"Backend Developer":         {"AI/ML APIs", "GraphQL", "Event-Driven Architecture", "Security"},
	"Machine Learning Engineer": {"MLOps", "AutoML", "Edge ML", "ML Security"},
	"QA Engineer":               {"Test Automation", "AI/ML Testing", "Performance Testing", "Security Testing"},
}

var universalTrends = []string{"AI/ML", "Cloud Computing", "Security", "Automation", "Data Literacy"}

// MaxIndustryTrends bounds IndustryTrends.
const MaxIndustryTrends = 5

// IndustryTrends returns the role's emerging trends topped up with universal ones.
func IndustryTrends(role string) []string {
	trends, ok := roleTrends[role]
	if !ok {
		trends = universalTrends[:4]
	}
	out := append([]string(nil), trends...)
	for _, u := range universalTrends {
		if !contains(out, u) {
			out = append(out, u)
		}
	}
	if len(out) > MaxIndustryTrends {
		out = out[:MaxIndustryTrends]
	}
	return out
}

// Complements lists, per anchor skill, the skills that pair well with it.
var Complements = map[string][]string{
	"Python":           {"Machine Learning", "Data Analysis", "Automation"},
	"JavaScript":       {"Frontend Development", "Node.js", "React"},
	"SQL":              {"Data Analysis", "Business Intelligence", "Data Engineering"},
	"Docker":           {"DevOps", "Microservices", "Cloud Deployment"},
	"Machine Learning": {"Python", "Data Science", "Statistics"},
	"React":            {"JavaScript", "Frontend Development", "UI/UX"},
	"AWS":              {"Cloud Computing", "DevOps", "Scalability"},
	"Git":              {"Version Control", "Collaboration", "DevOps"},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
