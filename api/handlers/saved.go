package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/saved"
	"github.com/meghashyamc/whereis/services/search"
	"github.com/meghashyamc/whereis/validation"
)

type SavedSearchRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	SearchRequest
}

type SavedSearchCreatedResponse struct {
	ID string `json:"id"`
}

func SetupSavedSearches(router *gin.Engine, logger logger.Logger, savedService *saved.Service, searchService *search.Service, validator *validation.Validator) {
	group := router.Group("/searches")
	group.POST("", handleCreateSavedSearch(savedService, searchService, logger, validator))
	group.GET("", handleListSavedSearches(savedService, logger))
	group.GET("/:id", handleGetSavedSearch(savedService, logger))
	group.GET("/:id/results", handleRunSavedSearch(savedService, searchService, logger))
	group.DELETE("/:id", handleDeleteSavedSearch(savedService, logger))
}

func handleCreateSavedSearch(service *saved.Service, searchService *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SavedSearchRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from saved search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate saved search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		query, err := request.toQuery()
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		if err := searchService.Check(query); err != nil {
			logger.Warn("saved search would not run", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		created, err := service.Create(request.Name, query)
		if err != nil {
			logger.Error("could not create saved search", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, SavedSearchCreatedResponse{ID: created.ID}, http.StatusCreated, nil)
	}
}

func handleListSavedSearches(service *saved.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		searches, err := service.List()
		if err != nil {
			logger.Error("could not list saved searches", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, searches, http.StatusOK, nil)
	}
}

func handleGetSavedSearch(service *saved.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		savedSearch, ok := getSavedSearch(c, service, logger)
		if !ok {
			return
		}

		writeResponse(c, savedSearch, http.StatusOK, nil)
	}
}

func handleRunSavedSearch(savedService *saved.Service, searchService *search.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		savedSearch, ok := getSavedSearch(c, savedService, logger)
		if !ok {
			return
		}

		runSearch(c, searchService, logger, savedSearch.Query)
	}
}

func handleDeleteSavedSearch(service *saved.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.Delete(c.Param("id")); err != nil {
			writeSavedSearchError(c, logger, err)
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func getSavedSearch(c *gin.Context, service *saved.Service, logger logger.Logger) (*saved.Search, bool) {
	savedSearch, err := service.Get(c.Param("id"))
	if err != nil {
		writeSavedSearchError(c, logger, err)
		return nil, false
	}

	return savedSearch, true
}

func writeSavedSearchError(c *gin.Context, logger logger.Logger, err error) {
	c.Abort()
	if errors.Is(err, saved.ErrNotFound) {
		logger.Info("saved search not found", "id", c.Param("id"))
		writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
		return
	}

	logger.Error("saved search operation failed", "id", c.Param("id"), "err", err.Error())
	writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
}
