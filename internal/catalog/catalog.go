// Package catalog holds the curated lookup tables and keyword rule lists the
// shipped pipelines use: severity/priority/status/component vocabularies and
// the bug-type classification rules.
//
// Every accessor returns a fresh copy. Lookup tables are configuration data
// owned per stage instance; concurrent pipelines must never share or corrupt
// mapping state, so nothing here is a shared mutable global.
package catalog

import "cleanse/internal/transformer/builtin"

func values(m map[string]string) builtin.RecognizedValues {
	out := make(builtin.RecognizedValues, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Severity covers the server-log severity spellings: Critical/High/Medium/Low.
func Severity() builtin.RecognizedValues {
	return values(map[string]string{
		"Critical": "Critical", "CRITICAL": "Critical", "P1": "Critical",
		"High": "High", "high": "High", "P2": "High",
		"Medium": "Medium", "med": "Medium", "P3": "Medium",
		"Low": "Low", "LOW": "Low", "P4": "Low",
	})
}

// LogEnvironment covers the server-log environment spellings (lower-case
// canonical forms).
func LogEnvironment() builtin.RecognizedValues {
	return values(map[string]string{
		"production": "production", "PRODUCTION": "production", "prod": "production",
		"staging": "staging", "Staging": "staging", "stg": "staging",
		"development": "development", "dev": "development", "DEV": "development",
	})
}

// Priority covers the bug-tracker priority spellings seen across JIRA,
// GitHub labels, and spreadsheets.
func Priority() builtin.RecognizedValues {
	return values(map[string]string{
		"Critical": "Critical", "CRITICAL": "Critical", "P0": "Critical",
		"Blocker": "Critical", "Very High": "Critical", "very high": "Critical",
		"V. High": "Critical",
		"High": "High", "HIGH": "High", "P1": "High", "Major": "High",
		"high": "High", "Hi": "High",
		"Medium": "Medium", "MEDIUM": "Medium", "P2": "Medium",
		"Normal": "Medium", "medium": "Medium", "Med": "Medium", "med": "Medium",
		"Low": "Low", "LOW": "Low", "P3": "Low", "Minor": "Low",
		"Trivial": "Low", "low": "Low", "Lo": "Low",
		"Not Important": "Low", "N/A": "Low",
	})
}

// Status covers ticket status spellings, including the free-text ones that
// real trackers accumulate.
func Status() builtin.RecognizedValues {
	return values(map[string]string{
		"Open": "Open", "OPEN": "Open", "New": "Open", "TODO": "Open",
		"open": "Open", "Reopened": "Open", "REOPENED": "Open", "Re-opened": "Open",
		"In Progress": "In Progress", "IN_PROGRESS": "In Progress",
		"InProgress": "In Progress", "Working": "In Progress",
		"Still working on it": "In Progress", "need more info": "In Progress",
		"waiting for deploy": "In Progress",
		"Resolved": "Resolved", "RESOLVED": "Resolved", "Fixed": "Resolved",
		"Done": "Resolved", "DONE": "Resolved", "Fixed by John on Monday": "Resolved",
		"Closed": "Closed", "CLOSED": "Closed", "Verified": "Closed",
		"Complete": "Closed", "closed": "Closed", "closed - duplicate": "Closed",
		"wont fix": "Closed", "Cant reproduce": "Closed",
	})
}

// Component covers component/module naming conventions.
func Component() builtin.RecognizedValues {
	return values(map[string]string{
		"auth-service": "Authentication", "Authentication": "Authentication",
		"AUTH": "Authentication", "Auth": "Authentication", "Login": "Authentication",
		"payment-gateway": "Payment", "Payment": "Payment", "PAYMENT": "Payment",
		"Payments": "Payment",
		"user-dashboard": "Dashboard", "Dashboard": "Dashboard", "UI": "Dashboard",
		"api-gateway": "API", "API": "API", "Backend": "API",
		"database": "Database", "Database": "Database", "DB": "Database",
		"notification-service": "Notifications", "Notifications": "Notifications",
		"EMAIL": "Notifications",
		"Reports": "Reports",
	})
}

// SDLCPhase covers software-lifecycle phase spellings.
func SDLCPhase() builtin.RecognizedValues {
	return values(map[string]string{
		"Requirements": "Requirements", "requirements": "Requirements",
		"Design": "Design", "DESIGN": "Design",
		"Development": "Development", "Dev": "Development",
		"Testing": "Testing", "QA": "Testing",
		"Deployment":  "Deployment",
		"Maintenance": "Maintenance",
	})
}

// TrackerEnvironment covers bug-tracker environment spellings (title-case
// canonical forms, unlike LogEnvironment).
func TrackerEnvironment() builtin.RecognizedValues {
	return values(map[string]string{
		"Production": "Production", "PROD": "Production",
		"production": "Production", "prod": "Production",
		"Staging": "Staging", "STAGE": "Staging", "staging": "Staging", "stg": "Staging",
		"Development": "Development", "DEV": "Development",
		"development": "Development", "dev": "Development",
		"QA": "Testing", "Testing": "Testing", "UAT": "Testing",
	})
}

// Browser covers browser-name spellings.
func Browser() builtin.RecognizedValues {
	return values(map[string]string{
		"Chrome": "Chrome", "chrome": "Chrome",
		"Firefox": "Firefox", "FIREFOX": "Firefox",
		"Safari": "Safari", "Edge": "Edge",
		"IE": "Internet Explorer",
	})
}

// OS covers operating-system spellings.
func OS() builtin.RecognizedValues {
	return values(map[string]string{
		"Windows 10": "Windows", "Win10": "Windows",
		"macOS": "macOS", "Mac": "macOS",
		"Linux": "Linux", "ubuntu": "Linux",
		"iOS": "iOS", "Android": "Android",
	})
}

// BugTypeRules classifies ticket titles into defect categories. Order is a
// curated priority list; first match wins.
func BugTypeRules() []builtin.KeywordRule {
	return []builtin.KeywordRule{
		{Keywords: []string{"crash", "exception", "null pointer"}, Category: "Crash/Fatal"},
		{Keywords: []string{"ui", "css", "button", "overlapping", "alignment", "looks weird"}, Category: "UI/Visual"},
		{Keywords: []string{"slow", "timeout", "performance", "memory leak"}, Category: "Performance"},
		{Keywords: []string{"security", "xss", "vulnerability", "permission"}, Category: "Security"},
		{Keywords: []string{"api", "500", "404", "gateway"}, Category: "API/Integration"},
		{Keywords: []string{"data", "wrong", "calculation", "search results"}, Category: "Data Integrity"},
	}
}

// BugTypeFallback is assigned when no bug-type rule matches.
const BugTypeFallback = "Functional"

// ComponentRules derives a component from free-text titles for sources that
// have no component field.
func ComponentRules() []builtin.KeywordRule {
	return []builtin.KeywordRule{
		{Keywords: []string{"login", "auth"}, Category: "Authentication"},
		{Keywords: []string{"payment"}, Category: "Payment"},
		{Keywords: []string{"dashboard", "ui", "button"}, Category: "Dashboard"},
		{Keywords: []string{"api", "backend"}, Category: "API"},
		{Keywords: []string{"database", "db"}, Category: "Database"},
		{Keywords: []string{"email", "notification"}, Category: "Notifications"},
		{Keywords: []string{"security", "xss"}, Category: "Security"},
		{Keywords: []string{"performance", "slow", "timeout"}, Category: "Performance"},
	}
}

// TimeSpentUnits converts textual durations to minutes ("3 hours" -> 180,
// "2 days" -> 960 under an 8-hour working day).
func TimeSpentUnits() map[string]float64 {
	return map[string]float64{"hour": 60, "day": 480}
}
