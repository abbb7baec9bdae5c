package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextagencyio/decoupled-commerce/internal/commerce"
	"github.com/nextagencyio/decoupled-commerce/internal/content"
	"github.com/nextagencyio/decoupled-commerce/internal/demo"
)

// Deps carries the wired collaborators for the router. Commerce and Content
// may be nil when the corresponding backend is not configured; Demo must be
// set when DemoMode is true.
type Deps struct {
	Commerce       *commerce.Client
	Content        *content.Client
	Demo           *demo.Catalog
	DemoMode       bool
	Sessions       *SessionManager
	SecureCookies  bool
	AllowedOrigins []string
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	{
		api.GET("/products", listProductsHandler(deps))
		api.GET("/products/:handle", productHandler(deps))
		api.GET("/collections", listCollectionsHandler(deps))
		api.GET("/collections/:handle", collectionHandler(deps))

		api.GET("/articles", listArticlesHandler(deps))
		api.GET("/articles/*path", articleHandler(deps))
		api.GET("/pages/*path", pageHandler(deps))
		api.POST("/graphql", contentProxyHandler(deps, logger))

		cart := api.Group("/cart")
		cart.Use(sessionMiddleware(deps.Sessions, deps.SecureCookies))
		{
			cart.GET("", cartSnapshotHandler(deps))
			cart.POST("/lines", addToCartHandler(deps))
			cart.PATCH("/lines/:lineID", updateLineHandler(deps))
			cart.DELETE("/lines/:lineID", removeLineHandler(deps))
			cart.POST("/drawer", drawerHandler(deps))
		}
	}

	return router
}
