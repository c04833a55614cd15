package dto

// BasicSearchParams describes the query string of the basic search endpoint.
type BasicSearchParams struct {
	Query      string `query:"q" validate:"required,min=1"`
	EntityType string `query:"type" validate:"omitempty,oneof=course assignment user"`
	Page       int    `query:"page"`
	PerPage    int    `query:"per_page"`
}

// SearchFilters narrows advanced searches per entity type. Fields that do not
// apply to the searched entity are ignored.
type SearchFilters struct {
	Term           string `json:"term,omitempty"`
	CourseID       *uint  `json:"course_id,omitempty"`
	AssignmentType string `json:"assignment_type,omitempty"`
	PointsMin      *int   `json:"points_min,omitempty"`
	PointsMax      *int   `json:"points_max,omitempty"`
	Role           string `json:"role,omitempty"`
}

// AdvancedSearchParams is the JSON body of the advanced search endpoint. The
// query is optional; filters alone can drive the search.
type AdvancedSearchParams struct {
	Query         string        `json:"query"`
	EntityType    string        `json:"entity_type" validate:"omitempty,oneof=course assignment user"`
	Filters       SearchFilters `json:"filters"`
	SortBy        string        `json:"sort_by"`
	SortDirection string        `json:"sort_direction" validate:"omitempty,oneof=asc desc"`
	Page          int           `json:"page"`
	PerPage       int           `json:"per_page"`
}

// SearchResult is one hit, normalized across entity types.
type SearchResult struct {
	ID          uint                   `json:"id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Relevance   float64                `json:"relevance"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// SearchResponse wraps a paginated result set.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}
