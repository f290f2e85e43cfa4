package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

const bodyLimit = "12M"

type Deps struct {
	DB *gorm.DB

	AuthHandler     *AuthHTTP
	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	WishlistHandler *WishlistHTTP
	BundleHandler   *BundleHTTP
	DiscountHandler *DiscountHTTP
	ProfileHandler  *ProfileHTTP
	UploadHandler   *UploadHTTP

	JWTSecret    []byte
	SecureCookie bool
	AllowOrigins []string
	CSRF         *csrf.Config

	Redis     *redis.Client
	RateLimit ratelimit.Config
}

// New builds the echo instance with the shared middleware chain and routes.
func New(logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(d.AllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     d.AllowOrigins,
			AllowCredentials: true,
		}))
	}
	e.Use(echomw.BodyLimit(bodyLimit))
	if d.CSRF != nil {
		cfg := *d.CSRF
		cfg.SkipPaths = append(cfg.SkipPaths, "/api/auth/signin", "/api/auth/signup")
		e.Use(csrf.Middleware(cfg))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	var resolve middleware.Resolver
	if d.AuthHandler != nil && d.AuthHandler.Svc != nil {
		resolve = sessionResolver(d.AuthHandler.Svc)
	}
	session := middleware.NewSessionMiddleware(d.JWTSecret, d.SecureCookie, resolve)
	api := e.Group("/api")

	auth := api.Group("/auth", ratelimit.TokenBucket(d.RateLimit, d.Redis))
	auth.POST("/signup", d.AuthHandler.SignUp)
	auth.POST("/signin", d.AuthHandler.SignIn)
	auth.POST("/signout", d.AuthHandler.SignOut)
	auth.GET("/session", d.AuthHandler.Session)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/export", d.CatalogHandler.ExportProducts, session.RequireAdmin)
	products.GET("/:slug", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, session.RequireAdmin)
	products.POST("/bulk", d.CatalogHandler.BulkUpsert, session.RequireAdmin)

	api.GET("/categories", d.CatalogHandler.GetCategories)
	api.POST("/categories", d.CatalogHandler.CreateCategory, session.RequireAdmin)

	cart := api.Group("/cart", session.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.Clear)
	cart.PUT("/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/:id", d.CartHandler.DeleteItem)

	wishlist := api.Group("/wishlist", session.RequireAuth)
	wishlist.GET("", d.WishlistHandler.GetWishlist)
	wishlist.POST("", d.WishlistHandler.Add)
	wishlist.DELETE("/:id", d.WishlistHandler.Delete)

	bundles := api.Group("/bundles")
	bundles.GET("", d.BundleHandler.List)
	bundles.GET("/:id", d.BundleHandler.Get)
	bundles.POST("", d.BundleHandler.Create, session.RequireAdmin)
	bundles.POST("/:id/items", d.BundleHandler.AddItem, session.RequireAdmin)
	bundles.DELETE("/:id/items/:itemId", d.BundleHandler.RemoveItem)

	api.GET("/discounts/active", d.DiscountHandler.Active)
	api.POST("/discounts", d.DiscountHandler.Create, session.RequireAdmin)

	profile := api.Group("/users/profile", session.RequireAuth)
	profile.GET("", d.ProfileHandler.Get)
	profile.PUT("", d.ProfileHandler.Update)

	api.POST("/upload", d.UploadHandler.Upload, session.RequireAdmin)
}
