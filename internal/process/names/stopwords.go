package names

// stopwords is generic project-management, technical and document vocabulary.
// A normalised name equal to one of these, or containing one as an
// underscore-delimited word, is not a project name.
var stopwords = toSet(
	// project management
	"PROJECT", "PROJECTS", "PROGRAM", "PROGRAMME", "INITIATIVE", "KICKOFF", "KICK_OFF",
	"MEETING", "MEETINGS", "STANDUP", "STAND_UP", "SYNC", "RETRO", "RETROSPECTIVE",
	"STATUS", "UPDATE", "UPDATES", "REPORT", "REPORTS", "SUMMARY", "OVERVIEW", "PLAN",
	"PLANNING", "ROADMAP", "MILESTONE", "MILESTONES", "DELIVERABLE", "DELIVERABLES",
	"TIMELINE", "SCHEDULE", "BUDGET", "FORECAST", "REVIEW", "SPRINT", "BACKLOG",
	"PHASE", "STAGE", "TASK", "TASKS", "ACTION", "ITEMS", "AGENDA", "MINUTES", "NOTES",
	"TEAM", "TEAMS", "MANAGEMENT", "STEERING", "COMMITTEE", "WORKSHOP", "PROPOSAL",
	"SCOPE", "REQUIREMENTS", "SPECIFICATION", "ESTIMATE", "QUOTE", "CONTRACT",

	// technical
	"SYSTEM", "SYSTEMS", "SOFTWARE", "HARDWARE", "PLATFORM", "APPLICATION", "APP",
	"SERVICE", "SERVICES", "MODULE", "COMPONENT", "FEATURE", "FEATURES", "API",
	"DATABASE", "BACKEND", "FRONTEND", "INFRASTRUCTURE", "INTEGRATION", "DEPLOYMENT",
	"RELEASE", "BUILD", "TEST", "TESTS", "TESTING", "QA", "PROTOTYPE", "POC", "PILOT",
	"EXPERIMENT", "EXPERIMENTS", "RESEARCH", "DEVELOPMENT", "ENGINEERING", "DESIGN",
	"ARCHITECTURE", "ANALYSIS", "IMPLEMENTATION", "MAINTENANCE", "SUPPORT", "BUGFIX",
	"BUG", "FIX", "HOTFIX", "REFACTOR", "MIGRATION", "UPGRADE", "CODE", "REPO",
	"MAIN", "MASTER", "DEV", "PROD", "STAGING",

	// documents and correspondence
	"DOCUMENT", "DOCUMENTS", "DOC", "DOCS", "FILE", "FILES", "MEMO", "EMAIL", "LETTER",
	"ATTACHMENT", "DRAFT", "FINAL", "TEMPLATE", "APPENDIX", "INVOICE", "RECEIPT",
	"TIMESHEET", "TIMESHEETS", "PAYROLL", "CLAIM", "SRED", "SR_ED", "RND", "R_D",
	"CONFIDENTIAL", "INTERNAL", "GENERAL", "MISC", "OTHER", "UNKNOWN", "UNTITLED",
	"NEW", "OLD", "TBD", "NA", "NONE",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}

	return set
}
