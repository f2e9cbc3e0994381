package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/whereis/api/handlers"
	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/saved"
	"github.com/meghashyamc/whereis/services/search"
	"github.com/meghashyamc/whereis/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, searchService *search.Service, savedService *saved.Service, validator *validation.Validator) {
	router.GET("/health", health())

	handlers.SetupSearch(router, logger, searchService, validator)
	handlers.SetupSavedSearches(router, logger, savedService, searchService, validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
