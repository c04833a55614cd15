package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gradient-edu/gradient-api/internal/dto"
	"github.com/gradient-edu/gradient-api/internal/models"
	"github.com/gradient-edu/gradient-api/internal/repository"
)

const (
	searchEntityCourse     = "course"
	searchEntityAssignment = "assignment"
	searchEntityUser       = "user"

	defaultSearchPageSize = 10
	maxSearchPageSize     = 100
)

// SearchService answers catalog searches across courses, assignments and users.
type SearchService interface {
	Basic(ctx context.Context, params dto.BasicSearchParams) (dto.SearchResponse, error)
	Advanced(ctx context.Context, params dto.AdvancedSearchParams) (dto.SearchResponse, error)
}

type searchService struct {
	search    repository.SearchRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSearchService constructs a SearchService instance.
func NewSearchService(search repository.SearchRepository, validate *validator.Validate, logger zerolog.Logger) SearchService {
	return &searchService{
		search:    search,
		validator: validate,
		logger:    logger.With().Str("component", "search_service").Logger(),
	}
}

func (s *searchService) Basic(ctx context.Context, params dto.BasicSearchParams) (dto.SearchResponse, error) {
	if err := s.validator.Struct(params); err != nil {
		return dto.SearchResponse{}, err
	}

	response, err := s.run(ctx, searchInput{
		query:      params.Query,
		entityType: params.EntityType,
		page:       params.Page,
		perPage:    params.PerPage,
	})
	if err != nil {
		return dto.SearchResponse{}, err
	}

	// Basic search always ranks the page by relevance.
	sort.SliceStable(response.Results, func(i, j int) bool {
		return response.Results[i].Relevance > response.Results[j].Relevance
	})
	return response, nil
}

func (s *searchService) Advanced(ctx context.Context, params dto.AdvancedSearchParams) (dto.SearchResponse, error) {
	if err := s.validator.Struct(params); err != nil {
		return dto.SearchResponse{}, err
	}

	response, err := s.run(ctx, searchInput{
		query:      params.Query,
		entityType: params.EntityType,
		filters:    params.Filters,
		sortBy:     params.SortBy,
		sortDesc:   strings.EqualFold(params.SortDirection, "desc"),
		page:       params.Page,
		perPage:    params.PerPage,
	})
	if err != nil {
		return dto.SearchResponse{}, err
	}

	// Entity-scoped searches keep the requested sort; mixed results have no
	// shared sort column, so they rank by relevance instead.
	if params.EntityType == "" {
		sort.SliceStable(response.Results, func(i, j int) bool {
			return response.Results[i].Relevance > response.Results[j].Relevance
		})
	}
	return response, nil
}

type searchInput struct {
	query      string
	entityType string
	filters    dto.SearchFilters
	sortBy     string
	sortDesc   bool
	page       int
	perPage    int
}

// run fans the search out per entity. A search scoped to one entity pushes
// pagination into SQL; a mixed search fetches up to a page per entity and
// paginates the merged set in memory.
func (s *searchService) run(ctx context.Context, input searchInput) (dto.SearchResponse, error) {
	page := input.page
	if page < 1 {
		page = 1
	}
	perPage := input.perPage
	if perPage < 1 {
		perPage = defaultSearchPageSize
	}
	if perPage > maxSearchPageSize {
		perPage = maxSearchPageSize
	}

	offset := (page - 1) * perPage
	mixed := input.entityType == ""
	sqlOffset := offset
	if mixed {
		sqlOffset = 0
	}

	var results []dto.SearchResult
	var total int64

	if mixed || input.entityType == searchEntityCourse {
		courses, count, err := s.search.Courses(ctx, repository.CourseSearchQuery{
			Query:    input.query,
			Term:     input.filters.Term,
			SortBy:   input.sortBy,
			SortDesc: input.sortDesc,
			Offset:   sqlOffset,
			Limit:    perPage,
		})
		if err != nil {
			return dto.SearchResponse{}, err
		}
		total += count
		for _, course := range courses {
			results = append(results, courseResult(course, input.query))
		}
	}

	if mixed || input.entityType == searchEntityAssignment {
		assignments, count, err := s.search.Assignments(ctx, repository.AssignmentSearchQuery{
			Query:          input.query,
			CourseID:       input.filters.CourseID,
			AssignmentType: input.filters.AssignmentType,
			PointsMin:      input.filters.PointsMin,
			PointsMax:      input.filters.PointsMax,
			SortBy:         input.sortBy,
			SortDesc:       input.sortDesc,
			Offset:         sqlOffset,
			Limit:          perPage,
		})
		if err != nil {
			return dto.SearchResponse{}, err
		}
		total += count
		for _, assignment := range assignments {
			results = append(results, assignmentResult(assignment, input.query))
		}
	}

	if mixed || input.entityType == searchEntityUser {
		users, count, err := s.search.Users(ctx, repository.UserSearchQuery{
			Query:    input.query,
			Role:     input.filters.Role,
			SortBy:   input.sortBy,
			SortDesc: input.sortDesc,
			Offset:   sqlOffset,
			Limit:    perPage,
		})
		if err != nil {
			return dto.SearchResponse{}, err
		}
		total += count
		for _, user := range users {
			results = append(results, userResult(user, input.query))
		}
	}

	if mixed {
		if offset >= len(results) {
			results = nil
		} else {
			end := offset + perPage
			if end > len(results) {
				end = len(results)
			}
			results = results[offset:end]
		}
	}

	if results == nil {
		results = []dto.SearchResult{}
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))

	return dto.SearchResponse{
		Results: results,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	}, nil
}

func containsFold(haystack, needle string) bool {
	return needle != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func courseResult(course models.Course, query string) dto.SearchResult {
	relevance := 1.0
	switch {
	case containsFold(course.Name, query):
		relevance = 1.0
	case containsFold(course.Code, query):
		relevance = 0.9
	case containsFold(course.Description, query):
		relevance = 0.7
	}

	return dto.SearchResult{
		ID:          course.ID,
		Type:        searchEntityCourse,
		Title:       course.Code + ": " + course.Name,
		Description: course.Description,
		Relevance:   relevance,
		Metadata:    map[string]interface{}{"term": course.Term},
	}
}

func assignmentResult(assignment models.Assignment, query string) dto.SearchResult {
	relevance := 1.0
	switch {
	case containsFold(assignment.Title, query):
		relevance = 1.0
	case containsFold(assignment.Description, query):
		relevance = 0.8
	}

	return dto.SearchResult{
		ID:          assignment.ID,
		Type:        searchEntityAssignment,
		Title:       assignment.Title,
		Description: assignment.Description,
		Relevance:   relevance,
		Metadata: map[string]interface{}{
			"course_id":       assignment.CourseID,
			"due_date":        assignment.DueDate,
			"points_possible": assignment.PointsPossible,
		},
	}
}

func userResult(user models.User, query string) dto.SearchResult {
	relevance := 1.0
	switch {
	case containsFold(user.FirstName, query), containsFold(user.LastName, query):
		relevance = 1.0
	case containsFold(user.Email, query):
		relevance = 0.8
	}

	return dto.SearchResult{
		ID:          user.ID,
		Type:        searchEntityUser,
		Title:       user.FullName(),
		Description: user.Email,
		Relevance:   relevance,
		Metadata:    map[string]interface{}{"role": string(user.Role)},
	}
}
