package scoring

import "intellitest/internal/domain"

var careers = brackets[domain.CareerRecommendations]{
	steps: []bracket[domain.CareerRecommendations]{
		{FloorVerySuperior, domain.CareerRecommendations{
			Title: "Elite Professional Careers",
			Careers: []domain.Career{
				{Name: "Research Scientist", Icon: "🔬", Match: 98},
				{Name: "Neurosurgeon / Physician", Icon: "🏥", Match: 96},
				{Name: "Aerospace Engineer", Icon: "🚀", Match: 95},
				{Name: "Data Scientist / AI Researcher", Icon: "🤖", Match: 97},
				{Name: "Investment Banking / Quant", Icon: "📈", Match: 94},
				{Name: "Patent Attorney", Icon: "⚖️", Match: 92},
				{Name: "University Professor", Icon: "🎓", Match: 93},
				{Name: "Software Architect", Icon: "💻", Match: 96},
			},
			Insight: "Your cognitive abilities place you among the top 2% of the population. You're well-suited for careers requiring complex problem-solving, abstract thinking, and innovation.",
		}},
		{FloorSuperior, domain.CareerRecommendations{
			Title: "Advanced Professional Careers",
			Careers: []domain.Career{
				{Name: "Software Engineer", Icon: "💻", Match: 95},
				{Name: "Physician / Dentist", Icon: "🏥", Match: 93},
				{Name: "Attorney / Lawyer", Icon: "⚖️", Match: 92},
				{Name: "Financial Analyst", Icon: "📊", Match: 94},
				{Name: "Mechanical Engineer", Icon: "⚙️", Match: 91},
				{Name: "Pharmacist", Icon: "💊", Match: 90},
				{Name: "Management Consultant", Icon: "📋", Match: 93},
				{Name: "Architect", Icon: "🏛️", Match: 89},
			},
			Insight: "You have superior cognitive abilities that qualify you for demanding professional roles. Your analytical skills and learning capacity are exceptional.",
		}},
		{FloorHighAverage, domain.CareerRecommendations{
			Title: "Professional & Skilled Careers",
			Careers: []domain.Career{
				{Name: "Accountant / CPA", Icon: "📒", Match: 92},
				{Name: "Registered Nurse", Icon: "👩‍⚕️", Match: 90},
				{Name: "Marketing Manager", Icon: "📣", Match: 91},
				{Name: "IT Project Manager", Icon: "🖥️", Match: 93},
				{Name: "Teacher / Educator", Icon: "📚", Match: 89},
				{Name: "Business Analyst", Icon: "📈", Match: 92},
				{Name: "Sales Director", Icon: "🤝", Match: 88},
				{Name: "Electrical Technician", Icon: "⚡", Match: 87},
			},
			Insight: "Your above-average cognitive abilities position you well for professional careers requiring good analytical thinking and problem-solving skills.",
		}},
		{FloorAverage, domain.CareerRecommendations{
			Title: "Skilled & Trade Careers",
			Careers: []domain.Career{
				{Name: "Sales Representative", Icon: "🤝", Match: 90},
				{Name: "Administrative Manager", Icon: "📁", Match: 88},
				{Name: "Skilled Tradesperson", Icon: "🔧", Match: 92},
				{Name: "Customer Service Manager", Icon: "📞", Match: 87},
				{Name: "Real Estate Agent", Icon: "🏠", Match: 89},
				{Name: "Police Officer", Icon: "👮", Match: 86},
				{Name: "Paralegal", Icon: "📜", Match: 85},
				{Name: "Small Business Owner", Icon: "🏪", Match: 91},
			},
			Insight: "Your cognitive profile is well-suited for careers that combine practical skills with customer interaction and moderate problem-solving.",
		}},
	},
	fallback: domain.CareerRecommendations{
		Title: "Practical & Hands-On Careers",
		Careers: []domain.Career{
			{Name: "Skilled Laborer", Icon: "🔨", Match: 90},
			{Name: "Service Industry", Icon: "🍽️", Match: 88},
			{Name: "Retail Associate", Icon: "🛒", Match: 87},
			{Name: "Warehouse Operations", Icon: "📦", Match: 89},
			{Name: "Food Service", Icon: "👨‍🍳", Match: 86},
			{Name: "Maintenance Worker", Icon: "🧰", Match: 88},
		},
		Insight: "Your strengths lie in practical, hands-on work. Focus on careers that value reliability, physical skills, and interpersonal abilities.",
	},
}

// CareerRecommendations returns the career narrative for the IQ's tier.
func CareerRecommendations(iq int) domain.CareerRecommendations {
	rec := careers.resolve(iq)
	rec.Careers = append([]domain.Career(nil), rec.Careers...)
	return rec
}

// positionTable places an IQ above, at or below a group average.
func positionTable(above, at int) brackets[domain.Position] {
	return brackets[domain.Position]{
		steps:    []bracket[domain.Position]{{above, domain.Above}, {at, domain.At}},
		fallback: domain.Below,
	}
}

var (
	collegePositions      = positionTable(115, 110)
	populationPositions   = positionTable(105, 95)
	professionalPositions = positionTable(115, 108)
)

// ComparisonData compares the IQ against three population groups.
func ComparisonData(iq int) domain.Comparisons {
	return domain.Comparisons{
		CollegeGraduates:    domain.GroupComparison{Average: 115, YourPosition: collegePositions.resolve(iq)},
		GeneralPopulation:   domain.GroupComparison{Average: 100, YourPosition: populationPositions.resolve(iq)},
		ProfessionalWorkers: domain.GroupComparison{Average: 112, YourPosition: professionalPositions.resolve(iq)},
	}
}

var famous = brackets[domain.FamousComparisons]{
	steps: []bracket[domain.FamousComparisons]{
		{140, domain.FamousComparisons{
			Range: "140+",
			People: []domain.NotablePerson{
				{Name: "Albert Einstein", Field: "Physicist", EstimatedIQ: "160+"},
				{Name: "Stephen Hawking", Field: "Physicist", EstimatedIQ: "160"},
				{Name: "Terence Tao", Field: "Mathematician", EstimatedIQ: "230"},
			},
			ProfessionAvg: "Top researchers, Nobel laureates, and chess grandmasters typically score in this range.",
		}},
		{FloorVerySuperior, domain.FamousComparisons{
			Range: "130-140",
			People: []domain.NotablePerson{
				{Name: "Bill Gates", Field: "Entrepreneur", EstimatedIQ: "160"},
				{Name: "Elon Musk", Field: "Entrepreneur", EstimatedIQ: "155"},
				{Name: "Most Physicians", Field: "Medicine", EstimatedIQ: "130"},
			},
			ProfessionAvg: "Medical doctors, attorneys, and senior engineers typically score in this range.",
		}},
		{FloorSuperior, domain.FamousComparisons{
			Range: "120-130",
			People: []domain.NotablePerson{
				{Name: "Average PhD Graduate", Field: "Academia", EstimatedIQ: "125"},
				{Name: "Senior Software Engineers", Field: "Tech", EstimatedIQ: "120-130"},
			},
			ProfessionAvg: "Graduate students, senior professionals, and skilled specialists typically score in this range.",
		}},
		{FloorHighAverage, domain.FamousComparisons{
			Range: "110-120",
			People: []domain.NotablePerson{
				{Name: "Average College Graduate", Field: "Various", EstimatedIQ: "115"},
				{Name: "School Teachers", Field: "Education", EstimatedIQ: "110-120"},
			},
			ProfessionAvg: "College graduates and white-collar professionals typically score in this range.",
		}},
		{100, domain.FamousComparisons{
			Range: "100-110",
			People: []domain.NotablePerson{
				{Name: "Average High School Graduate", Field: "Various", EstimatedIQ: "105"},
			},
			ProfessionAvg: "This is the average range. Most skilled trade workers and service professionals score here.",
		}},
	},
	fallback: domain.FamousComparisons{
		Range:         "Below 100",
		People:        []domain.NotablePerson{},
		ProfessionAvg: "About half of the population scores in this range.",
	},
}

// FamousComparisons lists notable people whose estimated IQ falls in the same range.
func FamousComparisons(iq int) domain.FamousComparisons {
	fc := famous.resolve(iq)
	fc.People = append([]domain.NotablePerson{}, fc.People...)
	return fc
}

var meanings = brackets[domain.RealWorldMeaning]{
	steps: []bracket[domain.RealWorldMeaning]{
		{FloorVerySuperior, domain.RealWorldMeaning{
			Learning:  "You can master complex subjects quickly and often without formal instruction.",
			Problems:  "You can solve novel, abstract problems that most people cannot.",
			Work:      "You're capable of performing at the highest levels in any intellectual field.",
			Education: "Graduate-level education would be easily achievable for you.",
		}},
		{FloorSuperior, domain.RealWorldMeaning{
			Learning:  "You learn new concepts faster than most and can handle advanced material.",
			Problems:  "You excel at complex problem-solving and strategic thinking.",
			Work:      "You're well-suited for demanding professional roles.",
			Education: "Graduate school is well within your capabilities.",
		}},
		{FloorHighAverage, domain.RealWorldMeaning{
			Learning:  "You learn at an above-average pace and handle complexity well.",
			Problems:  "You're good at analyzing problems and finding effective solutions.",
			Work:      "Professional careers requiring analytical skills are a good fit.",
			Education: "College education should be achievable with moderate effort.",
		}},
		{FloorAverage, domain.RealWorldMeaning{
			Learning:  "You learn at a typical pace with standard educational methods.",
			Problems:  "You can solve everyday problems and handle routine complexity.",
			Work:      "Many career paths are open to you with proper training.",
			Education: "Trade schools and some college programs are achievable.",
		}},
	},
	fallback: domain.RealWorldMeaning{
		Learning:  "You may benefit from hands-on learning and practical instruction.",
		Problems:  "You handle concrete, familiar problems well.",
		Work:      "Focus on careers that value practical skills and reliability.",
		Education: "Vocational training may be the best educational path.",
	},
}

// RealWorldMeaning explains the IQ in everyday terms.
func RealWorldMeaning(iq int) domain.RealWorldMeaning {
	return meanings.resolve(iq)
}
