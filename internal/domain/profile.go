package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Profile is the demographic data collected before a test may start.
type Profile struct {
	Email             string    `json:"email"`
	Age               int       `json:"age"`
	Sex               string    `json:"sex"`
	Ethnicity         string    `json:"ethnicity"`
	SubRegion         string    `json:"subRegion,omitempty"`
	CountryOfOrigin   string    `json:"countryOfOrigin"`
	CountryResiding   string    `json:"countryResiding"`
	Education         string    `json:"education"`
	PrimaryLanguage   string    `json:"primaryLanguage,omitempty"`
	ConsentToResearch bool      `json:"consentToResearch"`
	DeviceType        string    `json:"deviceType,omitempty"`
	Browser           string    `json:"browser,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

const (
	MinAge = 13
	MaxAge = 120
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// SexOptions are the accepted values of Profile.Sex.
var SexOptions = []string{"male", "female", "other", "preferNotToSay"}

// EthnicityOptions are the accepted values of Profile.Ethnicity.
var EthnicityOptions = []string{
	"african", "european", "asian", "indigenous", "pacificIslander",
	"middleEastern", "mixed", "other", "preferNotToSay",
}

// Regions lists the sub-regions of the ethnicities that require one.
var Regions = map[string][]string{
	"african":         {"West Africa", "East Africa", "North Africa", "Central Africa", "Southern Africa"},
	"european":        {"Western Europe", "Eastern Europe", "Northern Europe", "Southern Europe", "Central Europe"},
	"asian":           {"East Asia", "Southeast Asia", "South Asia", "Central Asia", "West Asia"},
	"indigenous":      {"North America", "Central America", "South America"},
	"pacificIslander": {"Melanesian", "Micronesian", "Polynesian"},
	"middleEastern":   {"Levant", "Arabian Peninsula", "North Africa", "Persian/Iranian"},
}

// EducationLevels are the accepted values of Profile.Education.
var EducationLevels = []string{
	"Less than High School",
	"High School Diploma/GED",
	"Some College",
	"Associate Degree",
	"Bachelor's Degree",
	"Master's Degree",
	"Doctoral Degree",
	"Professional Degree (MD, JD, etc.)",
}

// Countries is the sorted list of accepted countries.
var Countries = sortedCopy([]string{
	"United States", "Canada", "United Kingdom", "Australia", "Germany",
	"France", "Japan", "China", "India", "Brazil", "Mexico", "South Korea",
	"Italy", "Spain", "Netherlands", "Sweden", "Norway", "Denmark", "Finland",
	"Switzerland", "Austria", "Belgium", "Ireland", "New Zealand", "Singapore",
	"South Africa", "Nigeria", "Kenya", "Egypt", "Morocco", "Argentina",
	"Chile", "Colombia", "Peru", "Philippines", "Indonesia", "Malaysia",
	"Thailand", "Vietnam", "Pakistan", "Bangladesh", "Russia", "Ukraine",
	"Poland", "Czech Republic", "Hungary", "Romania", "Greece", "Portugal",
	"Israel", "United Arab Emirates", "Saudi Arabia", "Turkey", "Iran",
	"Other",
})

// Validate checks every field and reports all failures at once.
func (p Profile) Validate() error {
	fields := make(map[string]string)

	email := strings.TrimSpace(p.Email)
	switch {
	case email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fields["email"] = "Please enter a valid email"
	}

	switch {
	case p.Age == 0:
		fields["age"] = "Age is required"
	case p.Age < MinAge || p.Age > MaxAge:
		fields["age"] = "Please enter a valid age (13-120)"
	}

	if !contains(SexOptions, p.Sex) {
		fields["sex"] = "Please select an option"
	}

	if !contains(EthnicityOptions, p.Ethnicity) {
		fields["ethnicity"] = "Please select an option"
	} else if regions, ok := Regions[p.Ethnicity]; ok && !contains(regions, p.SubRegion) {
		fields["subRegion"] = "Please select a region"
	}

	if !contains(Countries, p.CountryOfOrigin) {
		fields["countryOfOrigin"] = "Please select your country of origin"
	}
	if !contains(Countries, p.CountryResiding) {
		fields["countryResiding"] = "Please select your current country"
	}
	if !contains(EducationLevels, p.Education) {
		fields["education"] = "Please select your education level"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
