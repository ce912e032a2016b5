package profile

// Option is a selectable value with a display label.
type Option struct {
	Value string
	Label string
}

var ExperienceLevels = []Option{
	{Value: "0-1", Label: "Entry Level (0-1 years)"},
	{Value: "1-3", Label: "Junior (1-3 years)"},
	{Value: "3-5", Label: "Mid-Level (3-5 years)"},
	{Value: "5-8", Label: "Senior (5-8 years)"},
	{Value: "8+", Label: "Expert (8+ years)"},
}

var AccessibilityOptions = []Option{
	{Value: "screen-reader", Label: "🔊 Screen Reader Compatible"},
	{Value: "remote", Label: "🏠 Remote Work Required"},
	{Value: "flexible-hours", Label: "⏰ Flexible Hours"},
	{Value: "sign-language", Label: "👋 Sign Language Support"},
	{Value: "mobility", Label: "♿ Wheelchair Accessible"},
	{Value: "mental-health", Label: "🧠 Mental Health Support"},
}

// SuggestedSkills feeds skill pickers.
var SuggestedSkills = []string{
	"JavaScript", "Python", "Java", "TypeScript", "C++", "C#", "Go", "Rust", "PHP", "Ruby",
	"React", "Vue.js", "Angular", "HTML", "CSS", "Tailwind CSS", "Next.js", "Svelte",
	"Node.js", "Express", "Django", "Flask", "Spring Boot", "ASP.NET", "FastAPI",
	"MongoDB", "PostgreSQL", "MySQL", "Redis", "SQL", "Firebase", "DynamoDB",
	"AWS", "Azure", "Google Cloud", "Docker", "Kubernetes", "CI/CD", "Jenkins", "Git",
	"Machine Learning", "TensorFlow", "PyTorch", "Data Analysis", "Pandas", "NumPy",
	"React Native", "Flutter", "Swift", "Kotlin", "Android", "iOS",
	"UI/UX Design", "Figma", "Adobe XD", "Photoshop", "API Development", "REST API", "GraphQL",
	"Testing", "Agile", "Scrum", "Communication", "Leadership", "Problem Solving",
}

// LabelFor returns the label of value in options, or value itself when unknown.
func LabelFor(options []Option, value string) string {
	for _, opt := range options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
