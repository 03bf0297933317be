package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// FacultyScorer computes composite scores for (course, instructor) pairs and
// produces the ranked, filtered candidate shortlist the placement engine
// searches over, per spec §4.3.
type FacultyScorer struct {
	cache  *CacheService
	logger *zap.Logger
}

// NewFacultyScorer constructs a FacultyScorer. cache may be nil, in which
// case every ranking is recomputed from scratch.
func NewFacultyScorer(cache *CacheService, logger *zap.Logger) *FacultyScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyScorer{cache: cache, logger: logger}
}

type staticScore struct {
	Instructor models.Instructor `json:"instructor"`
	TagMatch   float64           `json:"tag_match"`
	Base       float64           `json:"base"`
}

// Rank scores every approved instructor against the course, applies the
// workload-cap disqualification, filters to positive score and tag match,
// and returns the top five sorted by (score desc, tag_match desc, years
// desc, last_name asc), per spec §4.3.
func (s *FacultyScorer) Rank(ctx context.Context, course models.CurriculumCourse, instructors []models.Instructor, workload map[string]int, globalCap int) []models.FacultyCandidate {
	statics := s.staticScores(ctx, course, instructors)

	candidates := make([]models.FacultyCandidate, 0, len(statics))
	for _, st := range statics {
		if !st.Instructor.Schedulable() {
			continue
		}
		load := workload[st.Instructor.ID]
		cap := st.Instructor.Cap(globalCap)
		score := st.Base
		if load >= cap {
			score = -1000
		}
		candidates = append(candidates, models.FacultyCandidate{
			Instructor:         st.Instructor,
			MatchScore:         score,
			TagMatchPercentage: st.TagMatch,
			CurrentWorkload:    load,
		})
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if c.MatchScore > 0 && c.TagMatchPercentage > 0 {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.TagMatchPercentage != b.TagMatchPercentage {
			return a.TagMatchPercentage > b.TagMatchPercentage
		}
		if a.YearsOfExperience != b.YearsOfExperience {
			return a.YearsOfExperience > b.YearsOfExperience
		}
		return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
	})

	if len(filtered) > 5 {
		filtered = filtered[:5]
	}
	for i := range filtered {
		filtered[i].Rank = i + 1
	}
	return filtered
}

// staticScores computes the load-independent portion of each instructor's
// score (tag match, previous-subject bonus, experience, regular-staff
// bonus) and caches it per subject code, since it does not change within a
// run even as workload does.
func (s *FacultyScorer) staticScores(ctx context.Context, course models.CurriculumCourse, instructors []models.Instructor) []staticScore {
	cacheKey := fmt.Sprintf("scheduler:faculty-rank:%s", strings.ToLower(course.SubjectCode))

	if s.cache.Enabled() {
		var cached []staticScore
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached
		}
	}

	computed := make([]staticScore, 0, len(instructors))
	tags := course.TagSet()
	for _, instructor := range instructors {
		tagMatch := tagMatchPercentage(tags, instructor.Specializations)
		base := tagMatch
		if matchesPreviousSubjects(course, instructor) {
			base += 50
		}
		years := instructor.YearsOfExperience
		if years > 20 {
			years = 20
		}
		base += float64(years)
		if instructor.IsRegular() {
			base += 10
		}
		computed = append(computed, staticScore{Instructor: instructor, TagMatch: tagMatch, Base: base})
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, computed, 0)
	}
	return computed
}

// tagMatchPercentage computes the Jaccard-like percentage of course tags
// found in the instructor's specializations, case-insensitively.
func tagMatchPercentage(courseTags map[string]struct{}, specializations []string) float64 {
	if len(courseTags) == 0 {
		return 0
	}
	specSet := make(map[string]struct{}, len(specializations))
	for _, spec := range specializations {
		specSet[strings.ToLower(strings.TrimSpace(spec))] = struct{}{}
	}
	if len(specSet) == 0 {
		return 0
	}
	matches := 0
	for tag := range courseTags {
		if _, ok := specSet[tag]; ok {
			matches++
		}
	}
	return 100 * float64(matches) / float64(len(courseTags))
}

func matchesPreviousSubjects(course models.CurriculumCourse, instructor models.Instructor) bool {
	code := strings.ToLower(strings.TrimSpace(course.SubjectCode))
	name := strings.ToLower(strings.TrimSpace(course.SubjectName))
	for _, prev := range instructor.PreviousSubjects {
		p := strings.ToLower(strings.TrimSpace(prev))
		if p == "" {
			continue
		}
		if p == code || p == name {
			return true
		}
	}
	return false
}
