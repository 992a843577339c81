package intent

import (
	"strings"

	"github.com/ashureev/campus-assist/internal/domain"
)

// Rule names of the campus table.
const (
	IntentDirections  = "directions"
	IntentMap         = "map"
	IntentSearch      = "search"
	IntentDepartments = "departments"
	IntentAdmission   = "admission"
	IntentFees        = "fees"
	IntentFacilities  = "facilities"
	IntentPlacements  = "placements"
	IntentLibrary     = "library"
	IntentAbout       = "about"
	IntentGreeting    = "greeting"
	IntentContact     = "contact"
)

// WelcomeText opens every transcript.
const WelcomeText = "Hello! I'm your VVITU Campus AI assistant. I can help you with directions to college, admissions, facilities, placements, and much more about VVITU. How can I assist you today?"

const fallbackText = "I'm here to help! While I'm still learning about that topic, I can definitely assist you with campus information, directions, and services. What would you like to explore?"

var (
	admissionText = studentOr(
		"As a current VVITU student, here's information about course registration and academic procedures:",
		"Welcome to VVITU Admissions! Here's everything you need to know about joining our institution:",
	)
	libraryText = studentOr(
		"Welcome back to VVITU Central Library! Here's your library information:",
		"VVITU Central Library offers extensive resources for research and study:",
	)
	greetingText = RoleText{
		Other: "Hello! Welcome to our college. I can provide general information about our campus and services.",
		ByRole: map[domain.Role]string{
			domain.RoleStudent: "Hello! Welcome back to your student portal. I can help you with courses, grades, library access, and more.",
			domain.RoleVisitor: "Hello! Welcome to our college. I'm here to help you explore our campus, departments, and admission information.",
			domain.RoleAdmin:   "Hello! I can assist you with system management, user analytics, and content updates.",
		},
	}
)

// DefaultRules returns the campus rule table in priority order. Several
// keyword sets overlap ("find building" is both a map and a search phrase);
// the order below decides and is part of the router's contract.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     IntentDirections,
			Keywords: []string{"direction", "how to reach", "location", "address"},
			Build: fixedList("Here are the directions to reach VVITU College:", []domain.ListItem{
				{Title: "Address", Value: "VVITU Campus, Education City, Tamil Nadu", Icon: "📍"},
				{Title: "By Bus", Value: "Take Bus Route 45A, 67B from Central Station", Icon: "🚌"},
				{Title: "By Train", Value: "Nearest Railway Station: City Junction (5km)", Icon: "🚂"},
				{Title: "By Car", Value: "Take NH-44, Exit at VVITU Junction", Icon: "🚗"},
				{Title: "Landmarks", Value: "Near City Mall & Tech Park", Icon: "🏢"},
				{Title: "GPS Coordinates", Value: "11.0168° N, 76.9558° E", Icon: "🗺️"},
			}),
		},
		{
			Name:     IntentMap,
			Keywords: []string{"map", "navigate", "where is", "find building"},
			Build:    buildMap,
		},
		{
			Name:     IntentSearch,
			Keywords: []string{"search", "find", "look for"},
			Build: func(domain.Role, string) domain.ResponsePayload {
				return searchPayload("I can help you search for departments, services, events, and facilities at VVITU. What are you looking for?")
			},
		},
		{
			Name:     IntentDepartments,
			Keywords: []string{"department", "course", "branch"},
			Build: fixedMenu("VVITU offers excellent departments with state-of-the-art facilities. Here are our main departments:", []domain.Action{
				{Label: "Computer Science & Engineering", Icon: "💻", Token: "Show CSE Department"},
				{Label: "Electronics & Communication", Icon: "📡", Token: "Show ECE Department"},
				{Label: "Mechanical Engineering", Icon: "⚙️", Token: "Show Mechanical"},
				{Label: "Civil Engineering", Icon: "🏗️", Token: "Show Civil"},
				{Label: "Information Technology", Icon: "🌐", Token: "Show IT Department"},
				{Label: "MBA", Icon: "💼", Token: "Show MBA"},
			}),
		},
		{
			Name:     IntentAdmission,
			Keywords: []string{"admission", "apply", "eligibility"},
			Build: roleList(admissionText, []domain.ListItem{
				{Title: "Application Period", Value: "June 1 - July 31, 2024", Icon: "📅"},
				{Title: "Entrance Exam", Value: "TNEA / JEE Main / VVITU Entrance", Icon: "📝"},
				{Title: "Application Fee", Value: "₹1,200 (General) / ₹600 (SC/ST)", Icon: "💰"},
				{Title: "Eligibility", Value: "12th with 60% in PCM", Icon: "🎓"},
				{Title: "Seats Available", Value: "1,200+ across all branches", Icon: "🪑"},
				{Title: "Admissions Office", Value: "+91-422-2123456", Icon: "📞"},
			}),
		},
		{
			Name:     IntentFees,
			Keywords: []string{"fee", "cost", "tuition", "fees"},
			Build: fixedList("Here's VVITU's current fee structure. Scholarships and financial assistance are available:", []domain.ListItem{
				{Title: "B.Tech Annual Fee", Value: "₹1,25,000", Icon: "🎓"},
				{Title: "MBA Annual Fee", Value: "₹2,50,000", Icon: "📚"},
				{Title: "Hostel Fee", Value: "₹80,000/year", Icon: "🏠"},
				{Title: "Mess Fee", Value: "₹45,000/year", Icon: "🍽️"},
				{Title: "Library Fee", Value: "₹5,000/year", Icon: "📖"},
				{Title: "Scholarships", Value: "Merit & Need Based", Icon: "💡"},
			}),
		},
		{
			Name:     IntentFacilities,
			Keywords: []string{"facilities", "amenities", "infrastructure"},
			Build: fixedList("VVITU provides world-class facilities for holistic development:", []domain.ListItem{
				{Title: "Central Library", Value: "2 Lakh+ Books, Digital Resources", Icon: "📚"},
				{Title: "Laboratories", Value: "State-of-art Research Labs", Icon: "🔬"},
				{Title: "Sports Complex", Value: "Indoor & Outdoor Facilities", Icon: "🏃"},
				{Title: "Hostels", Value: "Separate Boys & Girls Hostels", Icon: "🏠"},
				{Title: "Medical Center", Value: "24/7 Healthcare Facility", Icon: "🏥"},
				{Title: "WiFi Campus", Value: "High-Speed Internet", Icon: "📶"},
			}),
		},
		{
			Name:     IntentPlacements,
			Keywords: []string{"placement", "job", "career", "companies"},
			Build: fixedList("VVITU has an excellent placement record with top companies visiting our campus:", []domain.ListItem{
				{Title: "Placement Rate", Value: "95% (2023-24)", Icon: "📈"},
				{Title: "Highest Package", Value: "₹45 LPA", Icon: "💰"},
				{Title: "Average Package", Value: "₹8.5 LPA", Icon: "💵"},
				{Title: "Top Recruiters", Value: "TCS, Infosys, Wipro, Cognizant", Icon: "🏢"},
				{Title: "Core Companies", Value: "L&T, Ashok Leyland, TVS", Icon: "⚙️"},
				{Title: "Training Programs", Value: "Skill Development & Aptitude", Icon: "🎯"},
			}),
		},
		{
			Name:     IntentLibrary,
			Keywords: []string{"library", "book"},
			Build: roleList(libraryText, []domain.ListItem{
				{Title: "Opening Hours", Value: "7 AM - 11 PM (Mon-Sat)", Icon: "🕒"},
				{Title: "Collection", Value: "2 Lakh+ Books & Journals", Icon: "📚"},
				{Title: "Digital Library", Value: "IEEE, ACM, Springer Access", Icon: "💻"},
				{Title: "Study Spaces", Value: "Individual & Group Study Rooms", Icon: "🪑"},
				{Title: "Research Facilities", Value: "PhD & M.Tech Research Support", Icon: "🔬"},
				{Title: "E-Resources", Value: "24/7 Online Access", Icon: "🌐"},
			}),
		},
		{
			Name:     IntentAbout,
			Keywords: []string{"about", "history", "vvitu", "college info"},
			Build: fixedList("VVITU (Vellore Vishvakarma Institute of Technology University) - Excellence in Technical Education:", []domain.ListItem{
				{Title: "Established", Value: "1984 (40 Years of Excellence)", Icon: "🏛️"},
				{Title: "Accreditation", Value: "NAAC A++ Grade, NBA Accredited", Icon: "🏆"},
				{Title: "Ranking", Value: "NIRF Ranked Engineering College", Icon: "📊"},
				{Title: "Student Strength", Value: "8,000+ Students", Icon: "👥"},
				{Title: "Faculty", Value: "500+ Qualified Faculty", Icon: "👨‍🏫"},
				{Title: "Vision", Value: "Global Technology Leadership", Icon: "🌟"},
			}),
		},
		{
			Name:     IntentGreeting,
			Keywords: []string{"hello", "hi", "hey"},
			Build: roleMenu(greetingText, []domain.Action{
				{Label: "Campus Map", Icon: "🗺️", Token: TokenShowMap},
				{Label: "Search", Icon: "🔍", Token: TokenShowSearch},
				{Label: "Departments", Icon: "🏢", Token: TokenShowDepartments},
				{Label: "Contact", Icon: "📞", Token: TokenShowContact},
			}),
		},
		{
			Name:     IntentContact,
			Keywords: []string{"contact", "phone", "email", "helpline"},
			Build: fixedList("Here are VVITU's contact details and important numbers:", []domain.ListItem{
				{Title: "Main Office", Value: "+91-422-2123456", Icon: "📞"},
				{Title: "Email", Value: "info@vvitu.ac.in", Icon: "📧"},
				{Title: "Admissions", Value: "+91-422-2123457", Icon: "🎓"},
				{Title: "Placement Cell", Value: "+91-422-2123458", Icon: "💼"},
				{Title: "Student Helpline", Value: "+91-422-2123459", Icon: "🆘"},
				{Title: "Emergency", Value: "108 / Campus Security: 100", Icon: "🚨"},
			}),
		},
	}
}

func buildMap(_ domain.Role, utterance string) domain.ResponsePayload {
	query := ""
	switch {
	case strings.Contains(utterance, "library"):
		query = "library"
	case strings.Contains(utterance, "cafeteria"):
		query = "cafeteria"
	}
	return mapPayload("Here's our interactive VVITU campus map! You can click on any building to get more information and directions.", query)
}

func fallbackPayload() domain.ResponsePayload {
	return menuPayload(fallbackText, []domain.Action{
		{Label: "Show Campus Map", Icon: "🗺️", Token: TokenShowMap},
		{Label: "Search Campus", Icon: "🔍", Token: TokenShowSearch},
		{Label: "Contact Info", Icon: "📞", Token: TokenShowContact},
		{Label: "Ask Different Question", Icon: "💭", Token: TokenContinue},
	})
}

func fixedList(text string, items []domain.ListItem) Builder {
	return func(domain.Role, string) domain.ResponsePayload {
		return listPayload(text, items)
	}
}

func roleList(text RoleText, items []domain.ListItem) Builder {
	return func(role domain.Role, _ string) domain.ResponsePayload {
		return listPayload(text.For(role), items)
	}
}

func fixedMenu(text string, actions []domain.Action) Builder {
	return func(domain.Role, string) domain.ResponsePayload {
		return menuPayload(text, actions)
	}
}

func roleMenu(text RoleText, actions []domain.Action) Builder {
	return func(role domain.Role, _ string) domain.ResponsePayload {
		return menuPayload(text.For(role), actions)
	}
}

// listPayload and menuPayload copy their input so callers own the result.
func listPayload(text string, items []domain.ListItem) domain.ResponsePayload {
	return domain.ResponsePayload{
		DisplayText: text,
		Kind:        domain.KindStructuredList,
		Data:        domain.ContentData{Items: append([]domain.ListItem(nil), items...)},
	}
}

func menuPayload(text string, actions []domain.Action) domain.ResponsePayload {
	return domain.ResponsePayload{
		DisplayText: text,
		Kind:        domain.KindActionMenu,
		Data:        domain.ContentData{Actions: append([]domain.Action(nil), actions...)},
	}
}

func mapPayload(text, query string) domain.ResponsePayload {
	return domain.ResponsePayload{
		DisplayText: text,
		Kind:        domain.KindMapRef,
		Data:        domain.ContentData{Map: &domain.MapRef{SearchQuery: query}},
	}
}

func searchPayload(text string) domain.ResponsePayload {
	return domain.ResponsePayload{
		DisplayText: text,
		Kind:        domain.KindSearchRef,
		Data:        domain.ContentData{Search: &domain.SearchRef{Placeholder: "Search campus..."}},
	}
}
