package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// InstructorRole enumerates the roles recognized by the scheduler core.
type InstructorRole string

const (
	RoleFaculty        InstructorRole = "FACULTY"
	RoleDepartmentHead InstructorRole = "DEPARTMENT_HEAD"
	RoleRegistrar      InstructorRole = "REGISTRAR"
	RoleCampusAdmin    InstructorRole = "CAMPUS_ADMIN"
)

// InstructorStatus enumerates onboarding states; only APPROVED is schedulable.
type InstructorStatus string

const (
	InstructorPending  InstructorStatus = "PENDING"
	InstructorVerified InstructorStatus = "VERIFIED"
	InstructorApproved InstructorStatus = "APPROVED"
)

// Weekday is a Monday-first weekday index distinct from time.Weekday so the
// scheduler's Monday..Saturday domain prints and parses the way the spec expects.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// String renders the weekday's canonical display name.
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return "Unknown"
	}
	return weekdayNames[d]
}

// ParseWeekday parses a day name (case-insensitive, full or 3-letter prefix)
// into a Weekday. Returns an error for unrecognized input.
func ParseWeekday(raw string) (Weekday, error) {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	for i, name := range weekdayNames {
		lower := strings.ToLower(name)
		if trimmed == lower || trimmed == lower[:3] {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unrecognized weekday %q", raw)
}

// TimeWindow is a closed minute-of-day interval [Start, End].
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Instructor represents a schedulable faculty member. The JSON-backed fields
// are loaded raw from storage and normalized once via Hydrate, mirroring the
// way the previous teacher_preference row was parsed at generation start.
type Instructor struct {
	ID                  string           `db:"id" json:"id"`
	FirstName           string           `db:"first_name" json:"first_name"`
	LastName            string           `db:"last_name" json:"last_name"`
	Role                InstructorRole   `db:"role" json:"role"`
	Designation         string           `db:"designation" json:"designation"`
	Department          string           `db:"department" json:"department"`
	SpecializationsRaw  types.JSONText   `db:"specializations" json:"-"`
	PreviousSubjectsRaw types.JSONText   `db:"previous_subjects" json:"-"`
	YearsOfExperience   int              `db:"years_of_experience" json:"years_of_experience"`
	PreferredWindowRaw  types.JSONText   `db:"preferred_window" json:"-"`
	AvailableDaysRaw    types.JSONText   `db:"available_days" json:"-"`
	Status              InstructorStatus `db:"status" json:"status"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`

	Specializations  []string        `db:"-" json:"specializations,omitempty"`
	PreviousSubjects []string        `db:"-" json:"previous_subjects,omitempty"`
	PreferredWindow  *TimeWindow     `db:"-" json:"preferred_window,omitempty"`
	AvailableDays    map[Weekday]bool `db:"-" json:"-"`
}

// FullName concatenates first and last name.
func (i Instructor) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Schedulable reports whether the instructor may be assigned sessions.
func (i Instructor) Schedulable() bool {
	return i.Status == InstructorApproved
}

// HasAvailableDays reports whether the instructor declared a non-empty
// available-day set. An instructor with none declared is fully available.
func (i Instructor) HasAvailableDays() bool {
	return len(i.AvailableDays) > 0
}

// IsAvailableOn reports whether the instructor accepts the given weekday.
func (i Instructor) IsAvailableOn(day Weekday) bool {
	if !i.HasAvailableDays() {
		return true
	}
	return i.AvailableDays[day]
}

// Cap returns the instructor's maximum assignable units for the run, given
// the configured global default.
func (i Instructor) Cap(globalMax int) int {
	if i.Role == RoleCampusAdmin {
		return 6
	}
	return globalMax
}

// IsRegular reports whether the designation denotes permanent staff.
func (i Instructor) IsRegular() bool {
	return strings.Contains(strings.ToLower(i.Designation), "regular")
}

// Hydrate parses the raw JSON-backed fields into their normalized forms. It
// must be called once after loading an Instructor from storage and before it
// is used by the faculty scorer or availability oracle.
func (i *Instructor) Hydrate() error {
	if len(i.SpecializationsRaw) > 0 {
		if err := json.Unmarshal(i.SpecializationsRaw, &i.Specializations); err != nil {
			return fmt.Errorf("parse specializations for instructor %s: %w", i.ID, err)
		}
	}
	if len(i.PreviousSubjectsRaw) > 0 {
		if err := json.Unmarshal(i.PreviousSubjectsRaw, &i.PreviousSubjects); err != nil {
			return fmt.Errorf("parse previous subjects for instructor %s: %w", i.ID, err)
		}
	}
	if len(i.AvailableDaysRaw) > 0 {
		var raw []string
		if err := json.Unmarshal(i.AvailableDaysRaw, &raw); err != nil {
			return fmt.Errorf("parse available days for instructor %s: %w", i.ID, err)
		}
		if len(raw) > 0 {
			i.AvailableDays = make(map[Weekday]bool, len(raw))
			for _, d := range raw {
				day, err := ParseWeekday(d)
				if err != nil {
					continue
				}
				i.AvailableDays[day] = true
			}
		}
	}
	if len(i.PreferredWindowRaw) > 0 {
		window, err := parsePreferredWindow(i.PreferredWindowRaw)
		if err != nil {
			return fmt.Errorf("parse preferred window for instructor %s: %w", i.ID, err)
		}
		i.PreferredWindow = window
	}
	return nil
}

// parsePreferredWindow accepts either of the two source encodings:
//   - ["start:HH:MM", "end:HH:MM"]
//   - "8:00 AM - 5:00 PM"
func parsePreferredWindow(raw types.JSONText) (*TimeWindow, error) {
	var pair []string
	if err := json.Unmarshal(raw, &pair); err == nil {
		if len(pair) == 2 {
			start, err := parseLabeledMinutes(pair[0])
			if err != nil {
				return nil, err
			}
			end, err := parseLabeledMinutes(pair[1])
			if err != nil {
				return nil, err
			}
			return &TimeWindow{Start: start, End: end}, nil
		}
		if len(pair) == 0 {
			return nil, nil
		}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, fmt.Errorf("unsupported preferred window encoding: %s", string(raw))
	}
	return parseRangeString(text)
}

func parseLabeledMinutes(labeled string) (int, error) {
	parts := strings.SplitN(labeled, ":", 2)
	value := labeled
	if len(parts) == 2 && (parts[0] == "start" || parts[0] == "end") {
		value = parts[1]
	}
	return parseClock24(strings.TrimSpace(value))
}

// parseRangeString parses "8:00 AM - 5:00 PM" style ranges.
func parseRangeString(text string) (*TimeWindow, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("unrecognized preferred window string %q", text)
	}
	start, err := parseClock12(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	end, err := parseClock12(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	return &TimeWindow{Start: start, End: end}, nil
}

func parseClock24(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("unrecognized time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("unrecognized hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("unrecognized minute in %q", value)
	}
	return hour*60 + minute, nil
}

func parseClock12(value string) (int, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	meridiem := ""
	if strings.HasSuffix(value, "AM") || strings.HasSuffix(value, "PM") {
		meridiem = value[len(value)-2:]
		value = strings.TrimSpace(value[:len(value)-2])
	}
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("unrecognized time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("unrecognized hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("unrecognized minute in %q", value)
	}
	switch meridiem {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return hour*60 + minute, nil
}

// InstructorFilter captures query parameters for listing instructors.
type InstructorFilter struct {
	Department string
	Role       *InstructorRole
	Status     *InstructorStatus
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
