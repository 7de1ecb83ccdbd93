package stations

// Namma Metro network data. Station order follows the physical line so that
// route segments can be computed by index.

// Line identifies a metro line.
type Line string

const (
	LinePurple Line = "purple"
	LineGreen  Line = "green"
	LineYellow Line = "yellow"
)

var lines = map[Line][]string{
	LinePurple: {
		"Baiyappanahalli", "Swami Vivekananda Road", "Indiranagar", "Halasuru",
		"Trinity", "MG Road", "Cubbon Park", "Vidhana Soudha", "Sir M Visvesvaraya",
		"Majestic", "Chickpet", "KR Market", "National College", "Lalbagh",
		"South End Circle", "Jayanagar", "RV Road", "Banashankari",
		"Jaya Prakash Nagar", "Yelachenahalli", "Konanakunte Cross",
		"Doddakallasandra", "Vajarahalli", "Thalaghattapura", "Silk Institute",
	},
	LineGreen: {
		"Nagasandra", "Dasarahalli", "Jalahalli", "Peenya Industry",
		"Peenya", "Goraguntepalya", "Yeshwanthpur", "Sandal Soap Factory",
		"Mahalakshmi", "Rajajinagar", "Kuvempu Road", "Srirampura",
		"Mantri Square Sampige Road", "Majestic", "Chickpet", "KR Market",
		"National College", "Lalbagh", "South End Circle", "Jayanagar",
		"RV Road", "Banashankari", "Jaya Prakash Nagar", "Yelachenahalli",
	},
	LineYellow: {
		"RV Road", "Jayanagar", "South End Circle", "Lalbagh",
		"National College", "KR Market", "Chickpet", "Majestic",
	},
}

// AllLines returns the full line -> ordered stations map.
func AllLines() map[Line][]string {
	out := make(map[Line][]string, len(lines))
	for line, sts := range lines {
		out[line] = append([]string(nil), sts...)
	}
	return out
}

// ValidLine reports whether the name refers to a known line.
func ValidLine(name string) bool {
	_, ok := lines[Line(name)]
	return ok
}

// StationExists reports whether any line serves the station.
func StationExists(name string) bool {
	for _, sts := range lines {
		for _, s := range sts {
			if s == name {
				return true
			}
		}
	}
	return false
}

// OnLine reports whether the station is served by the given line.
func OnLine(line Line, station string) bool {
	for _, s := range lines[line] {
		if s == station {
			return true
		}
	}
	return false
}

// RouteIntersectsLine reports whether a home/work commute touches the line.
// Either endpoint being on the line counts: a commuter whose route starts or
// ends on a line can plausibly be found on it.
func RouteIntersectsLine(line Line, homeStation, workStation string) bool {
	return OnLine(line, homeStation) || OnLine(line, workStation)
}
