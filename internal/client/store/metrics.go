// Package store keeps fetched school data and the metrics derived from it.
package store

import (
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/schooladmin/internal/client/domain"
)

const (
	recentWindow = 30 * 24 * time.Hour
	recentLimit  = 5
	unspecified  = "unspecified"
)

// RecentAdmission is one entry of ClassMetrics.RecentAdmissions
type RecentAdmission struct {
	EnrollmentID  int64
	StudentName   string
	DivisionName  string
	AdmissionDate time.Time
}

// ClassMetrics are the enrollment figures of one class
type ClassMetrics struct {
	ClassID          int64
	ClassName        string
	Headcount        int
	GenderCounts     map[string]int
	AdmissionTypes   map[string]int
	Modes            map[string]int
	MonthlyTrend     map[string]int
	RecentAdmissions []RecentAdmission
}

func (m ClassMetrics) clone() ClassMetrics {
	m.GenderCounts = maps.Clone(m.GenderCounts)
	m.AdmissionTypes = maps.Clone(m.AdmissionTypes)
	m.Modes = maps.Clone(m.Modes)
	m.MonthlyTrend = maps.Clone(m.MonthlyTrend)
	m.RecentAdmissions = slices.Clone(m.RecentAdmissions)
	return m
}

func newClassMetrics(c domain.Class) *ClassMetrics {
	return &ClassMetrics{
		ClassID:        c.ID,
		ClassName:      c.Name,
		GenderCounts:   map[string]int{},
		AdmissionTypes: map[string]int{},
		Modes:          map[string]int{},
		MonthlyTrend:   map[string]int{},
	}
}

// Months returns the trend keys in ascending order
func (m ClassMetrics) Months() []string {
	months := make([]string, 0, len(m.MonthlyTrend))
	for k := range m.MonthlyTrend {
		months = append(months, k)
	}
	sort.Strings(months)
	return months
}

// countable reports whether an enrollment counts toward headcounts
func countable(e domain.Enrollment) bool {
	return e.Status == "" || strings.EqualFold(e.Status, "active")
}

func classKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func label(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return unspecified
	}
	return v
}

// ComputeClassMetrics builds metrics for every known class, keyed by
// lower-cased class name. Enrollments are matched to classes by name,
// ignoring case, then by class id. Unmatched enrollments are logged and dropped.
func ComputeClassMetrics(classes []domain.Class, enrollments []domain.Enrollment, now time.Time, lgr zerolog.Logger) map[string]ClassMetrics {
	byName := make(map[string]*ClassMetrics, len(classes))
	byID := make(map[int64]*ClassMetrics, len(classes))
	for _, c := range classes {
		m := newClassMetrics(c)
		byName[classKey(c.Name)] = m
		if c.ID > 0 {
			byID[c.ID] = m
		}
	}

	for _, e := range enrollments {
		if !countable(e) {
			continue
		}
		m := matchClass(e, byName, byID)
		if m == nil {
			lgr.Warn().Int64("enrollmentId", e.ID).Str("class", e.ClassName()).Msg("Enrollment does not match a known class")
			continue
		}

		m.Headcount++
		gender := ""
		studentName := ""
		if e.Student != nil {
			gender = e.Student.Gender
			studentName = e.Student.FullName()
		}
		m.GenderCounts[label(gender)]++
		m.AdmissionTypes[label(e.AdmissionType)]++
		m.Modes[label(e.Mode)]++

		if e.AdmissionDate.IsZero() {
			continue
		}
		m.MonthlyTrend[e.AdmissionDate.Format("2006-01")]++

		age := now.Sub(e.AdmissionDate)
		if age >= 0 && age <= recentWindow {
			divisionName := ""
			if e.Division != nil {
				divisionName = e.Division.Name
			}
			m.RecentAdmissions = append(m.RecentAdmissions, RecentAdmission{
				EnrollmentID:  e.ID,
				StudentName:   studentName,
				DivisionName:  divisionName,
				AdmissionDate: e.AdmissionDate,
			})
		}
	}

	out := make(map[string]ClassMetrics, len(byName))
	for key, m := range byName {
		sort.SliceStable(m.RecentAdmissions, func(i, j int) bool {
			return m.RecentAdmissions[i].AdmissionDate.After(m.RecentAdmissions[j].AdmissionDate)
		})
		if len(m.RecentAdmissions) > recentLimit {
			m.RecentAdmissions = m.RecentAdmissions[:recentLimit]
		}
		out[key] = *m
	}
	return out
}

func matchClass(e domain.Enrollment, byName map[string]*ClassMetrics, byID map[int64]*ClassMetrics) *ClassMetrics {
	if e.Class == nil {
		return nil
	}
	if m, ok := byName[classKey(e.Class.Name)]; ok && e.Class.Name != "" {
		return m
	}
	return byID[e.Class.ID]
}

// DivisionMetrics are the enrollment figures of one division
type DivisionMetrics struct {
	DivisionID   int64
	DivisionName string
	Capacity     int
	Headcount    int
	GenderCounts map[string]int
}

func (m DivisionMetrics) clone() DivisionMetrics {
	m.GenderCounts = maps.Clone(m.GenderCounts)
	return m
}

// Male returns the number of male students
func (m DivisionMetrics) Male() int { return m.GenderCounts["male"] }

// Female returns the number of female students
func (m DivisionMetrics) Female() int { return m.GenderCounts["female"] }

// GenderRatio is male:female reduced to lowest terms, e.g. "3:2". A side
// with no students keeps the other side as counted.
func (m DivisionMetrics) GenderRatio() string {
	male, female := m.Male(), m.Female()
	if male == 0 || female == 0 {
		return strconv.Itoa(male) + ":" + strconv.Itoa(female)
	}
	if g := gcd(male, female); g > 1 {
		male, female = male/g, female/g
	}
	return strconv.Itoa(male) + ":" + strconv.Itoa(female)
}

// Vacancies is the remaining capacity, never negative
func (m DivisionMetrics) Vacancies() int {
	if m.Capacity <= m.Headcount {
		return 0
	}
	return m.Capacity - m.Headcount
}

// ComputeDivisionMetrics builds metrics per division id. Enrollments without
// a known division are ignored.
func ComputeDivisionMetrics(divisions []domain.Division, enrollments []domain.Enrollment) map[int64]DivisionMetrics {
	out := make(map[int64]*DivisionMetrics, len(divisions))
	for _, d := range divisions {
		out[d.ID] = &DivisionMetrics{DivisionID: d.ID, DivisionName: d.Name, Capacity: d.Capacity, GenderCounts: map[string]int{}}
	}
	for _, e := range enrollments {
		if !countable(e) || e.Division == nil {
			continue
		}
		m, ok := out[e.Division.ID]
		if !ok {
			continue
		}
		m.Headcount++
		gender := ""
		if e.Student != nil {
			gender = e.Student.Gender
		}
		m.GenderCounts[label(gender)]++
	}

	result := make(map[int64]DivisionMetrics, len(out))
	for id, m := range out {
		result[id] = *m
	}
	return result
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
