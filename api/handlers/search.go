package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/search"
	"github.com/meghashyamc/whereis/validation"
)

const contentTypeNDJSON = "application/x-ndjson"

var errRankWithStream = errors.New("rank cannot be combined with stream")

type SearchRequest struct {
	Location       string   `form:"location" json:"location" validate:"valid_path"`
	MoreLocations  []string `form:"more_locations" json:"more_locations" validate:"dive,valid_path"`
	Input          string   `form:"input" json:"input" validate:"max=1000"`
	Ext            string   `form:"ext" json:"ext" validate:"max=255"`
	Depth          *int     `form:"depth" json:"depth"`
	Limit          *int     `form:"limit" json:"limit" validate:"omitempty,min=0"`
	Strict         bool     `form:"strict" json:"strict"`
	IgnoreCase     bool     `form:"ignore_case" json:"ignore_case"`
	Hidden         bool     `form:"hidden" json:"hidden"`
	MinSize        string   `form:"min_size" json:"min_size" validate:"valid_size"`
	MaxSize        string   `form:"max_size" json:"max_size" validate:"valid_size"`
	Size           string   `form:"size" json:"size" validate:"valid_size"`
	ModifiedAfter  string   `form:"modified_after" json:"modified_after" validate:"valid_time"`
	ModifiedBefore string   `form:"modified_before" json:"modified_before" validate:"valid_time"`
	CreatedAfter   string   `form:"created_after" json:"created_after" validate:"valid_time"`
	CreatedBefore  string   `form:"created_before" json:"created_before" validate:"valid_time"`
	Rank           string   `form:"rank" json:"rank" validate:"max=1000"`
	Stream         bool     `form:"stream" json:"-"`
}

// toQuery converts the request into a search query. Times are expected to
// have passed validation already.
func (r SearchRequest) toQuery() (search.Query, error) {
	query := search.Query{
		Location:      r.Location,
		MoreLocations: r.MoreLocations,
		Input:         r.Input,
		Ext:           r.Ext,
		Depth:         r.Depth,
		Limit:         r.Limit,
		Strict:        r.Strict,
		IgnoreCase:    r.IgnoreCase,
		Hidden:        r.Hidden,
		MinSize:       r.MinSize,
		MaxSize:       r.MaxSize,
		Size:          r.Size,
		Rank:          r.Rank,
	}

	times := []struct {
		text   string
		target **time.Time
	}{
		{r.ModifiedAfter, &query.ModifiedAfter},
		{r.ModifiedBefore, &query.ModifiedBefore},
		{r.CreatedAfter, &query.CreatedAfter},
		{r.CreatedBefore, &query.CreatedBefore},
	}
	for _, t := range times {
		if t.text == "" {
			continue
		}
		parsed, err := dateparse.ParseAny(t.text)
		if err != nil {
			return search.Query{}, fmt.Errorf("invalid time %q: %w", t.text, err)
		}
		*t.target = &parsed
	}

	return query, nil
}

type SearchResponse struct {
	Results []string `json:"results"`
	Count   int      `json:"count"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, logger, validator))
}

func handleSearch(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		if request.Stream && request.Rank != "" {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{errRankWithStream.Error()})
			return
		}

		query, err := request.toQuery()
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		if request.Stream {
			streamSearch(c, service, logger, query)
			return
		}

		runSearch(c, service, logger, query)
	}
}

func runSearch(c *gin.Context, service *search.Service, logger logger.Logger, query search.Query) {
	results, err := service.Run(c.Request.Context(), query)
	if err != nil {
		writeSearchError(c, logger, err)
		return
	}

	writeResponse(c, SearchResponse{Results: results, Count: len(results)}, http.StatusOK, nil)
}

// streamSearch writes one JSON-encoded path per line, flushing after each.
func streamSearch(c *gin.Context, service *search.Service, logger logger.Logger, query search.Query) {
	started := false
	encoder := json.NewEncoder(c.Writer)

	err := service.Stream(c.Request.Context(), query, func(path string) bool {
		if !started {
			c.Header("Content-Type", contentTypeNDJSON)
			c.Status(http.StatusOK)
			started = true
		}
		if err := encoder.Encode(path); err != nil {
			logger.Debug("could not write streamed result", "err", err.Error())
			return false
		}
		c.Writer.Flush()
		return true
	})

	if started {
		if err != nil {
			logger.Debug("search stream ended early", "err", err.Error())
		}
		return
	}
	if err != nil {
		writeSearchError(c, logger, err)
		return
	}

	c.Header("Content-Type", contentTypeNDJSON)
	c.Status(http.StatusOK)
}

func writeSearchError(c *gin.Context, logger logger.Logger, err error) {
	c.Abort()
	if errors.Is(err, search.ErrInvalidPattern) {
		logger.Warn("search pattern rejected", "err", err.Error())
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return
	}

	logger.Error("search failed", "err", err.Error())
	writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
}
